package watch

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
)

type metricsServer struct {
	srv    *http.Server
	addr   string
	logger *slog.Logger
	done   chan struct{}
}

// startMetricsServer serves handler on /metrics at addr. The listener is
// bound before returning so a busy port fails the watch at startup.
func startMetricsServer(addr string, handler http.Handler, logger *slog.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to listen for metrics").
			WithContext("addr", addr).
			Build()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	m := &metricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		addr:   ln.Addr().String(),
		logger: logger,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(m.done)
		if err := m.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	logger.Info("Serving metrics", logfields.Addr(m.addr))
	return m, nil
}

func (m *metricsServer) stop() {
	if m == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.srv.Shutdown(ctx); err != nil {
		m.logger.Warn("Metrics server shutdown error", logfields.Error(err))
	}
	<-m.done
}
