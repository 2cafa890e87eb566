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

package server

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"time"

	liberr "github.com/sabouaram/webcore/errors"
	"github.com/sabouaram/webcore/ingest"
	"github.com/sabouaram/webcore/middleware"
	"github.com/sabouaram/webcore/response"
	"github.com/sabouaram/webcore/webctx"
	"github.com/sabouaram/webcore/ws"
)

// bufConn pairs a buffered reader (which may already hold bytes read past
// the request head) with the raw connection's writer and closer, so the
// WebSocket frame loop started after a handshake never drops bytes the
// head parser over-read.
type bufConn struct {
	r *bufio.Reader
	net.Conn
}

func (b *bufConn) Read(p []byte) (int, error) { return b.r.Read(p) }

// serveConnection drives the §4.7 state machine for one accepted TCP
// connection: read head, divert to WebSocket or read body, route, run the
// middleware chain and handler, serialize the response, then loop while
// keep-alive holds and the server isn't shutting down.
func (s *Server) serveConnection(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReaderSize(conn, s.readBufferSize())
	clientID := remoteHost(conn)

	for {
		head, err := ingest.ParseHead(r, s.cfg.MaxHeaderSize)
		if err != nil {
			if status, ok := protocolStatus(err); ok {
				synthetic := &ingest.RequestHead{Proto: "HTTP/1.1", KeepAlive: false}
				s.respondStatus(conn, synthetic, status, liberr.ToBody(err))
			}
			return
		}

		if ws.IsUpgradeRequest(&head.Headers) {
			if handler, ok := s.wsHandler(head.Path); ok {
				s.serveWebSocket(&bufConn{r: r, Conn: conn}, head, handler)
				return
			}
		}

		body, err := ingest.ReadBody(r, head, s.cfg.MaxBodySize, conn)
		if err != nil {
			if status, ok := protocolStatus(err); ok {
				s.respondStatus(conn, head, status, liberr.ToBody(err))
			}
			return
		}

		if !s.limiter.Allow(clientID) {
			s.respondStatus(conn, head, 429, liberr.Body{Code: "rate_limited", Message: "rate limit exceeded"})
			if !head.KeepAlive || s.isShuttingDown() {
				return
			}
			continue
		}

		start := time.Now()
		ctx := s.dispatch(head, body)
		s.Metrics.RecordHistogram("http_request_duration_seconds", time.Since(start).Seconds(),
			map[string]string{"method": head.Method, "path": head.Path})
		s.Metrics.IncrementCounter("http_requests_total", map[string]string{
			"method": head.Method, "path": head.Path, "status": strconv.Itoa(ctx.Response().Status()),
		})

		err = ctx.Response().ToHTTPResponse(conn, ctx.RequestMeta(), s.cfg.ServerBanner)
		ctx.Destroy()
		if err != nil {
			return
		}

		if !head.KeepAlive || s.isShuttingDown() {
			return
		}
	}
}

// dispatch runs routing, the middleware chain and the handler for one
// request, always returning a Context whose Response is ready to
// serialize — including on a routing miss or a middleware/handler error.
func (s *Server) dispatch(head *ingest.RequestHead, body []byte) *webctx.Context {
	route, ok := s.Router.Find(head.Method, head.Path)

	var handler middleware.HandlerFunc
	var mws []middleware.Middleware
	var params map[string]string

	if ok {
		handler, mws, params = route.Handler, route.Middlewares, route.Params
	} else if s.Static != nil {
		if h, found := s.Static(head.Method, head.Path); found {
			handler, ok = h, true
		}
	}

	ctx := webctx.New(head, body, params)
	ctx.SetSessionManager(s.sessions)

	if !ok {
		s.writeError(ctx, liberr.New(liberr.CodeRouting, "no route matched"))
		return ctx
	}

	chain := middleware.NewChain(s.Global, mws)
	result, err := chain.Run(ctx)

	switch {
	case err != nil:
		s.writeError(ctx, err)
	case result == middleware.Respond:
		// a middleware already wrote the response.
	default:
		handler(ctx)
	}

	return ctx
}

func (s *Server) writeError(ctx *webctx.Context, err error) {
	code := liberr.CodeApplication
	if e, ok := err.(liberr.Error); ok {
		code = e.Code()
	}
	ctx.Response().SetStatus(code.StatusCode())
	_ = ctx.Response().WriteJSON(liberr.ToBody(err))
}

func (s *Server) respondStatus(w net.Conn, head *ingest.RequestHead, status int, body liberr.Body) {
	resp := response.New()
	resp.SetStatus(status)
	_ = resp.WriteJSON(body)
	_ = resp.ToHTTPResponse(w, response.RequestMeta{Proto: head.Proto, KeepAlive: head.KeepAlive}, s.cfg.ServerBanner)
}

// protocolStatus maps a ParseHead/ReadBody error to the wire status the
// connection loop should write before closing the connection, and reports
// whether a response should be attempted at all. Pure transport errors
// (peer already gone) get no response; CodeProtocol errors get 400, and an
// oversized body gets 413 rather than CodeResource's generic 503.
func protocolStatus(err error) (status int, respond bool) {
	if err == ingest.ErrBodyTooLarge {
		return 413, true
	}
	if e, ok := err.(liberr.Error); ok && e.Code() == liberr.CodeProtocol {
		return 400, true
	}
	return 0, false
}

func (s *Server) serveWebSocket(raw *bufConn, head *ingest.RequestHead, handler ws.MessageHandler) {
	if err := ws.Handshake(raw.Conn, &head.Headers); err != nil {
		return
	}

	c := ws.NewConn(remoteHost(raw.Conn), raw)
	s.sockets.Add(c)
	s.Metrics.SetGauge("ws_active_connections", float64(s.sockets.Len()), map[string]string{"path": head.Path})
	defer func() {
		s.sockets.Remove(c.ID)
		s.Metrics.SetGauge("ws_active_connections", float64(s.sockets.Len()), map[string]string{"path": head.Path})
	}()

	_ = ws.Loop(c, s.cfg.WSMaxPayload, handler)
}

func (s *Server) readBufferSize() int {
	if s.cfg.ReadBufferSize > 0 {
		return s.cfg.ReadBufferSize
	}
	return 4096
}

func remoteHost(conn net.Conn) string {
	addr := conn.RemoteAddr().String()
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[:i]
	}
	return addr
}

