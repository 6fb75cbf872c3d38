package server

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"
)

// relayParam marks a request whose query was moved out of the fragment by the relay page.
const relayParam = "relay"

// CallbackResult contains the location the browser arrived on.
type CallbackResult struct {
	Location *url.URL
	err      error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler receives the browser returning from login.
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	base          *url.URL
	relayFragment bool
	resultChan    chan CallbackResult
	once          sync.Once
	callbackHit   bool
	mu            sync.Mutex
}

// NewCallbackHandler creates a handler reporting locations relative to base (the client's entry point).
// relayFragment enables the fragment relay page used in fragment mode.
func NewCallbackHandler(base *url.URL, relayFragment bool) *CallbackHandler {
	return &CallbackHandler{
		base:          base,
		relayFragment: relayFragment,
		resultChan:    make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP handles the callback request.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		if !h.claim() {
			http.Error(w, "Callback already processed", http.StatusBadRequest)
			return
		}
		h.Send(CallbackResult{err: fmt.Errorf("login failed: %s", errParam)})
		h.render(w, http.StatusBadRequest, "Login failed", "The login was not completed. Return to the terminal and try again.")
		return
	}

	if !query.Has("s") && !query.Has(relayParam) {
		if h.relayFragment {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, relayPage)
			return
		}
		http.Error(w, "Missing login handoff", http.StatusBadRequest)
		return
	}

	if !h.claim() {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Location: h.location(query)})
	h.render(w, http.StatusOK, "✓ Signing you in", "You can close this window and return to the terminal.")
}

// claim marks the callback as used and reports whether this request was first.
func (h *CallbackHandler) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.callbackHit {
		return false
	}
	h.callbackHit = true
	return true
}

func (h *CallbackHandler) location(query url.Values) *url.URL {
	loc := *h.base
	if query.Has(relayParam) {
		query.Del(relayParam)
		loc.RawQuery = ""
		loc.Fragment = query.Encode()
		return &loc
	}
	loc.RawQuery = query.Encode()
	return &loc
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving the callback.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

func (h *CallbackHandler) render(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	pageTemplate.Execute(w, struct{ Title, Message string }{title, message})
}

var pageTemplate = template.Must(template.New("callback").Parse(`
<!DOCTYPE html>
<html>
<head>
    <title>VibeSync</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #0d0d0d; }
        .container { text-align: center; background: #181818; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.4); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #aaa; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

const relayPage = `
<!DOCTYPE html>
<html>
<head><title>VibeSync</title></head>
<body>
<script>
  var hash = window.location.hash.replace(/^#/, '');
  window.location.replace('/?` + relayParam + `=1' + (hash ? '&' + hash : ''));
</script>
</body>
</html>
`
