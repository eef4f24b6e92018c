package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"
)

const serverName = "ndc-postgres"

// Serve starts the HTTP listener and blocks until it shuts down, either
// because ctx was canceled or the process received SIGINT. RegisterOnShutdown
// releases the pool; accepting an external context lets tests and the serve
// CLI command cancel it without a real SIGINT.
func (s *Service) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.HostPort,
		Handler:           setServerHeader(s.Router()),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		s.Pool.Close()
		s.Log.Info("server: shutdown complete")
	})

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)

		select {
		case <-sigint:
		case <-ctx.Done():
		}

		if err := srv.Shutdown(context.Background()); err != nil {
			s.Log.Warnf("server: shutdown error: %s", err)
		}
		close(idleConnsClosed)
	}()

	s.Log.Infow("server: starting", "host_port", s.Config.HostPort)

	l, err := net.Listen("tcp", s.Config.HostPort)
	if err != nil {
		return err
	}

	if err := srv.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-idleConnsClosed
	return nil
}

func setServerHeader(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", serverName)
		h.ServeHTTP(w, r)
	})
}
