package bot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type apiCall struct {
	Method string
	Params map[string]any
}

func (c apiCall) param(key string) string {
	return fmt.Sprint(c.Params[key])
}

// fakeAPI answers Bot API methods with minimal successful results.
type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	srv   *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := path.Base(r.URL.Path)
		params := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&params)
		api.mu.Lock()
		api.calls = append(api.calls, apiCall{Method: method, Params: params})
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getFile":
			fmt.Fprintf(w, `{"ok":true,"result":{"file_id":%q,"file_path":"photos/proof.jpg"}}`, fmt.Sprint(params["file_id"]))
		case "sendPhoto":
			fmt.Fprintf(w, `{"ok":true,"result":{"message_id":101,"date":0,"chat":{"id":1,"type":"private"},"photo":[{"file_id":%q,"file_unique_id":"u1","width":90,"height":90}]}}`, fmt.Sprint(params["photo"]))
		case "answerCallbackQuery", "setMyCommands", "deleteWebhook":
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":100,"date":0,"chat":{"id":1,"type":"private"}}}`)
		}
	}))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) bot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{URL: a.srv.URL, Token: "TEST", Offline: true, Synchronous: true})
	require.NoError(t, err)
	return b
}

func (a *fakeAPI) Calls(method string) []apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []apiCall
	for _, c := range a.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (a *fakeAPI) Reset() {
	a.mu.Lock()
	a.calls = nil
	a.mu.Unlock()
}

// textsTo returns the texts sent to chatID.
func (a *fakeAPI) textsTo(chatID int64) []string {
	var out []string
	for _, c := range a.Calls("sendMessage") {
		if c.param("chat_id") == fmt.Sprint(chatID) {
			out = append(out, c.param("text"))
		}
	}
	return out
}
