package middleware

import tele "gopkg.in/telebot.v4"

const (
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// countingContext counts successful outbound messages and notes whether
// any of them carried a keyboard.
type countingContext struct{ tele.Context }

func (m countingContext) record(err error, opts []any) error {
	if err != nil {
		return err
	}
	n, _ := m.Get(keyMessages).(int)
	m.Set(keyMessages, n+1)
	if hasKeyboard(opts) {
		m.Set(keyKeyboard, true)
	}
	return nil
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m countingContext) Send(what any, opts ...any) error {
	return m.record(m.Context.Send(what, opts...), opts)
}

func (m countingContext) Reply(what any, opts ...any) error {
	return m.record(m.Context.Reply(what, opts...), opts)
}

func (m countingContext) Edit(what any, opts ...any) error {
	return m.record(m.Context.Edit(what, opts...), opts)
}

func (m countingContext) EditOrSend(what any, opts ...any) error {
	return m.record(m.Context.EditOrSend(what, opts...), opts)
}

func (m countingContext) EditOrReply(what any, opts ...any) error {
	return m.record(m.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware makes GetCounters meaningful for downstream
// handlers.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(keyMessages, 0)
		c.Set(keyKeyboard, false)
		return next(countingContext{Context: c})
	}
}

// GetCounters returns the number of messages sent for the update and
// whether any had a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	n, _ := c.Get(keyMessages).(int)
	kb, _ := c.Get(keyKeyboard).(bool)
	return n, kb
}
