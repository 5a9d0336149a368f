package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Options tune the underlying http.Server. WriteTimeout stays zero so event
// streams are never cut off by the server.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
}

type HTTPServer struct {
	handler http.Handler
	srv     *http.Server
}

var _ Server = (*HTTPServer)(nil)

func NewHTTPServer(handler http.Handler, opts Options) *HTTPServer {
	return &HTTPServer{
		handler: handler,
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			IdleTimeout:       opts.IdleTimeout,
		},
	}
}

// Start serves until Stop is called; a stopped server returns nil.
func (h *HTTPServer) Start(_ context.Context) error {
	err := h.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *HTTPServer) Stop(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
