// Package server implements the TCP acceptor, the per-connection session
// state machine and the pipe-delimited wire protocol.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultAddress     = "localhost:5555"
	defaultGracePeriod = 3 * time.Second
)

// Config carries the acceptor settings.
type Config struct {
	Address     string
	GracePeriod time.Duration
}

// Server accepts TCP connections and runs one session per connection,
// unbounded. All sessions share the injected store and authenticator.
type Server struct {
	config Config
	store  Store
	auth   Authenticator
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener

	wg          sync.WaitGroup
	connections sync.Map
	clientID    int64
}

// New creates a Server with defaults applied for unset config fields.
func New(config Config, store Store, auth Authenticator, logger *slog.Logger) *Server {
	if config.Address == "" {
		config.Address = defaultAddress
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = defaultGracePeriod
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: config,
		store:  store,
		auth:   auth,
		logger: logger,
	}
}

// Start binds the listening socket and serves until ctx is cancelled or the
// listener fails. It blocks for the lifetime of the accept loop.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("server started", "address", listener.Addr().String())

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			s.logger.Debug("close listener", "error", err)
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		id := atomic.AddInt64(&s.clientID, 1)
		s.logger.Info("client connected", "client", id, "remote", conn.RemoteAddr().String())

		s.wg.Add(1)
		s.connections.Store(id, conn)
		go func() {
			defer func() {
				s.connections.Delete(id)
				if err := conn.Close(); err != nil {
					s.logger.Debug("close connection", "client", id, "error", err)
				}
				s.logger.Info("client disconnected", "client", id)
				s.wg.Done()
			}()

			sess := &session{
				id:     id,
				conn:   conn,
				store:  s.store,
				auth:   s.auth,
				logger: s.logger,
			}
			sess.run()
		}()
	}
}

// Addr returns the bound listener address, useful when the configured
// address carries port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.config.Address
	}
	return s.listener.Addr().String()
}

// Stop waits for in-flight sessions to finish. Sessions still open after the
// grace period have their connections closed, which unblocks their reads.
func (s *Server) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(s.config.GracePeriod):
	case <-ctx.Done():
	}

	s.logger.Info("grace period exceeded, closing remaining connections")
	s.connections.Range(func(key, value any) bool {
		if conn, ok := value.(net.Conn); ok {
			_ = conn.Close()
		}
		return true
	})
	s.wg.Wait()
	return nil
}
