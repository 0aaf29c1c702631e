// ABOUTME: Loopback HTTP server that receives the OAuth provider redirect
// ABOUTME: Captures the first callback's query parameters and hands them to the flow

package oauthflow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
)

const callbackPath = "/auth/callback"

// callbackPage is shown in the browser once the redirect lands; the rest of
// the flow continues in the terminal.
const callbackPage = `<!DOCTYPE html>
<html><head><title>CollabVoice</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<h2>You're signed in to CollabVoice</h2>
<p>You can close this tab and return to the terminal.</p>
</body></html>`

// CallbackServer listens on an ephemeral loopback port for the provider
// redirect. It is one-shot: the first callback wins and later hits are
// answered but discarded.
type CallbackServer struct {
	ln   net.Listener
	srv  *http.Server
	once sync.Once
	ch   chan url.Values
}

// NewCallbackServer binds a loopback listener and starts serving.
func NewCallbackServer() (*CallbackServer, error) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind loopback listener: %w", err)
	}

	s := &CallbackServer{
		ln: ln,
		ch: make(chan url.Values, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, s.handleCallback)
	s.srv = &http.Server{Handler: mux}

	go func() {
		// ErrServerClosed is the normal shutdown path.
		_ = s.srv.Serve(ln)
	}()

	return s, nil
}

// RedirectURL returns the URL the provider must redirect back to.
func (s *CallbackServer) RedirectURL() string {
	return fmt.Sprintf("http://%s%s", s.ln.Addr().String(), callbackPath)
}

// Wait blocks until the redirect arrives or ctx is done.
func (s *CallbackServer) Wait(ctx context.Context) (url.Values, error) {
	select {
	case query := <-s.ch:
		return query, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close shuts the listener down. Safe to call after Wait returns.
func (s *CallbackServer) Close() {
	_ = s.srv.Shutdown(context.Background())
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	s.once.Do(func() {
		s.ch <- r.URL.Query()
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, callbackPage)
}
