// Package sender runs outbound Telegram calls on a small worker pool with
// retries for transient network failures.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/core/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the job could not be queued.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options tunes the dispatcher; zero values pick defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds one job including its retries.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes queued sends asynchronously.
type Dispatcher struct {
	opts Options
	mu   sync.RWMutex
	jobs chan job
	done bool
	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewDispatcher starts the workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, jobs: make(chan job, opts.QueueSize)}
	d.wg.Add(opts.Workers)
	for w := 0; w < opts.Workers; w++ {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. run may execute several times,
// so it must be safe to repeat.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.done {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that ultimately failed.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return
	}
	d.done = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// The request context may already be done when the queue drains.
	deadline, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts, err := d.attempt(deadline, j)
	attrs := []slog.Attr{
		slog.String("mode", j.action),
		slog.String("path", j.endpoint),
		slog.Int("attempts", attempts),
		slog.Duration("duration", logger.Took(start)),
	}
	if err == nil {
		logger.Debug(ctx, "tg.sender", "send.success", append(attrs, slog.String("status", "ok"))...)
		return
	}
	d.errs.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail", append(attrs,
		slog.String("status", "fail"),
		slog.String("err", Redact(err)),
		slog.String("err_code", Classify(err)),
	)...)
}

func (d *Dispatcher) attempt(ctx context.Context, j job) (int, error) {
	total := d.opts.MaxRetries + 1
	var err error
	for n := 1; n <= total; n++ {
		if err = j.run(); err == nil {
			return n, nil
		}
		if n == total || !netutil.ShouldRetry(err) {
			return n, err
		}
		timer := time.NewTimer(d.opts.RetryBackoff * time.Duration(n))
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		logger.Debug(ctx, "tg.sender", "send.retry", slog.String("mode", j.action), slog.Int("attempts", n))
	}
	return total, err
}

// Redact renders err with bot tokens masked.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

// Classify maps a send error to a short code for logs.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return "DNS"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "TIMEOUT"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "DIAL"
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return "HTTP_429"
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code >= http.StatusInternalServerError:
			return "HTTP_5XX"
		case apiErr.Code >= http.StatusBadRequest:
			return "HTTP_4XX"
		}
	}
	return "UNKNOWN"
}
