/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package server ties the connection engine together: the router, the
// middleware chain, the outbound pool, the session manager, the rate
// limiter, metrics and the WebSocket registry, driving a hand-rolled
// accept loop instead of net/http.Server so the §4.7 connection state
// machine is the thing actually running the wire.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sabouaram/webcore/config"
	liberr "github.com/sabouaram/webcore/errors"
	"github.com/sabouaram/webcore/logger"
	"github.com/sabouaram/webcore/metrics"
	"github.com/sabouaram/webcore/middleware"
	"github.com/sabouaram/webcore/pool"
	"github.com/sabouaram/webcore/ratelimit"
	"github.com/sabouaram/webcore/router"
	"github.com/sabouaram/webcore/session"
	"github.com/sabouaram/webcore/ws"
)

// StaticHandler is consulted when the router finds no match, per §4.7
// step 4 — "consult the optional static-file collaborator". A nil StaticHandler
// (the default) means every routing miss falls straight through to 404.
type StaticHandler func(method, path string) (middleware.HandlerFunc, bool)

// Server orchestrates one bound listener and every request that arrives on
// it. Router and Global are meant to be populated by the caller between
// New and Run; mutating them after Run starts is not supported, matching
// the router's own "immutable after start" discipline.
type Server struct {
	cfg *config.ServerConfig
	log logger.Logger

	Router  *router.Router
	Global  []middleware.Middleware
	Metrics metrics.Metrics
	Static  StaticHandler

	sessions *session.Manager
	store    session.Store
	limiter  *ratelimit.Limiter
	outbound *pool.Pool
	sockets  *ws.Registry

	mu       sync.RWMutex
	wsRoutes map[string]ws.MessageHandler

	listener net.Listener
	wg       sync.WaitGroup

	activeConnections int64
	shuttingDown      int32
}

// New builds a Server from cfg, wiring a fresh router, metrics registry,
// session manager (file-backed when cfg.SessionDir is set, in-memory
// otherwise), rate limiter and outbound pool. Call AddWebSocketRoute and
// populate Router/Global before Run.
func New(cfg *config.ServerConfig, log logger.Logger) (*Server, error) {
	m := metrics.New()

	var store session.Store
	if cfg.SessionDir != "" {
		fs, err := session.NewFileStore(cfg.SessionDir, cfg.SessionMaxAge, cfg.SessionCleanupInterval)
		if err != nil {
			return nil, err
		}
		store = fs
	} else {
		store = session.NewMemoryStore(cfg.SessionMaxAge, cfg.SessionCleanupInterval)
	}

	sessions := session.NewManager(store, session.Config{
		CookieName: cfg.SessionCookieName,
		MaxAge:     cfg.SessionMaxAge,
		Secure:     cfg.SessionSecure,
		HTTPOnly:   cfg.SessionHTTPOnly,
	})

	limiter := ratelimit.New(cfg.RateLimitMaxRequests, cfg.RateLimitWindow, cfg.RateLimitCleanupInterval, m)

	outbound := pool.New(pool.TCPDialer{ConnectTimeout: cfg.PoolConnectTimeout}, pool.Options{
		MaxConnections:     cfg.PoolMaxConnections,
		MaxIdleConnections: cfg.PoolMaxIdleConnections,
		IdleTimeout:        cfg.PoolIdleTimeout,
		MaxLifetime:        cfg.PoolMaxLifetime,
		CleanupInterval:    cfg.PoolCleanupInterval,
	})

	return &Server{
		cfg:      cfg,
		log:      log,
		Router:   router.New(),
		Metrics:  m,
		sessions: sessions,
		store:    store,
		limiter:  limiter,
		outbound: outbound,
		sockets:  ws.NewRegistry(),
		wsRoutes: map[string]ws.MessageHandler{},
	}, nil
}

// AddWebSocketRoute registers handler as the upgrade target for path; the
// connection loop diverts to it for any request naming path whose headers
// ask for a WebSocket upgrade.
func (s *Server) AddWebSocketRoute(path string, handler ws.MessageHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wsRoutes[path] = handler
}

func (s *Server) wsHandler(path string) (ws.MessageHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.wsRoutes[path]
	return h, ok
}

// Addr returns the listener's bound address, or nil before Run has started
// listening — useful when cfg.Port is 0 and the OS picks an ephemeral port.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Outbound exposes the outbound connection pool to handlers that need to
// reach another service.
func (s *Server) Outbound() *pool.Pool { return s.outbound }

// Sockets exposes the broadcast-capable WebSocket registry.
func (s *Server) Sockets() *ws.Registry { return s.sockets }

func (s *Server) isShuttingDown() bool {
	return atomic.LoadInt32(&s.shuttingDown) == 1
}

// Run binds cfg.Host:cfg.Port and accepts connections until ctx is
// canceled, at which point it performs the same graceful shutdown as
// Shutdown. It blocks until every connection has drained or the shutdown
// grace period elapses.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return liberr.Wrap(liberr.CodeTransport, "listen failed", err)
	}
	s.listener = ln

	if s.log != nil {
		s.log.Info(fmt.Sprintf("server %q listening on %s", s.cfg.Name, addr), nil)
	}

	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isShuttingDown() {
				grace := s.cfg.ShutdownGrace
				if grace <= 0 {
					grace = 5 * time.Second
				}
				drained := make(chan struct{})
				go func() {
					s.wg.Wait()
					close(drained)
				}()
				select {
				case <-drained:
				case <-time.After(grace):
				}
				return nil
			}
			return liberr.Wrap(liberr.CodeTransport, "accept failed", err)
		}

		atomic.AddInt64(&s.activeConnections, 1)
		s.Metrics.SetGauge("active_connections", float64(atomic.LoadInt64(&s.activeConnections)), nil)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				atomic.AddInt64(&s.activeConnections, -1)
				s.Metrics.SetGauge("active_connections", float64(atomic.LoadInt64(&s.activeConnections)), nil)
			}()
			s.serveConnection(conn)
		}()
	}
}

// Shutdown stops accepting new connections and waits up to
// cfg.ShutdownGrace (default 5s) for in-flight connections to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.shuttingDown, 0, 1) {
		return nil
	}

	if s.log != nil {
		s.log.Info(fmt.Sprintf("shutting down server %q", s.cfg.Name), nil)
	}

	if s.listener != nil {
		_ = s.listener.Close()
	}

	grace := s.cfg.ShutdownGrace
	if grace <= 0 {
		grace = 5 * time.Second
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
	case <-ctx.Done():
	}

	s.limiter.Close()
	s.outbound.Close()
	s.store.Close()

	return nil
}
