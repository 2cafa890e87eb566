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

package server_test

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"time"

	"github.com/sabouaram/webcore/config"
	"github.com/sabouaram/webcore/server"
	"github.com/sabouaram/webcore/webctx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testConfig() *config.ServerConfig {
	cfg, err := config.Load("")
	Expect(err).ToNot(HaveOccurred())
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.RateLimitMaxRequests = 1000
	cfg.ShutdownGrace = time.Second
	return cfg
}

func startServer(s *server.Server) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Run(ctx) }()

	Eventually(func() net.Addr {
		return s.Addr()
	}, time.Second, 5*time.Millisecond).ShouldNot(BeNil())

	return cancel
}

var _ = Describe("[TC-SRV] Server", func() {
	It("[TC-SRV-001] routes a matched request through the handler and serializes the response", func() {
		cfg := testConfig()
		s, err := server.New(cfg, nil)
		Expect(err).ToNot(HaveOccurred())

		s.Router.AddRoute(http.MethodGet, "/hello", func(ctx *webctx.Context) {
			ctx.Response().SetStatus(200)
			_ = ctx.Response().WriteJSON(map[string]string{"hi": "there"})
		})

		cancel := startServer(s)
		defer cancel()

		conn, err := net.Dial("tcp", s.Addr().String())
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("GET /hello HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
		Expect(err).ToNot(HaveOccurred())

		resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(200))
	})

	It("[TC-SRV-002] responds 404 when no route matches and no static handler is wired", func() {
		cfg := testConfig()
		s, err := server.New(cfg, nil)
		Expect(err).ToNot(HaveOccurred())

		cancel := startServer(s)
		defer cancel()

		conn, err := net.Dial("tcp", s.Addr().String())
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("GET /nope HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
		Expect(err).ToNot(HaveOccurred())

		resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(404))
	})

	It("[TC-SRV-003] rejects requests past the configured rate limit with 429", func() {
		cfg := testConfig()
		cfg.RateLimitMaxRequests = 1
		cfg.RateLimitWindow = time.Minute
		s, err := server.New(cfg, nil)
		Expect(err).ToNot(HaveOccurred())

		s.Router.AddRoute(http.MethodGet, "/x", func(ctx *webctx.Context) {
			ctx.Response().SetStatus(200)
		})

		cancel := startServer(s)
		defer cancel()

		doGet := func() int {
			conn, err := net.Dial("tcp", s.Addr().String())
			Expect(err).ToNot(HaveOccurred())
			defer conn.Close()

			_, err = conn.Write([]byte("GET /x HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
			Expect(err).ToNot(HaveOccurred())

			resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
			Expect(err).ToNot(HaveOccurred())
			return resp.StatusCode
		}

		Expect(doGet()).To(Equal(200))
		Expect(doGet()).To(Equal(429))
	})

	It("[TC-SRV-004] Shutdown stops accepting new connections", func() {
		cfg := testConfig()
		s, err := server.New(cfg, nil)
		Expect(err).ToNot(HaveOccurred())

		cancel := startServer(s)
		addr := s.Addr().String()

		Expect(s.Shutdown(context.Background())).To(Succeed())
		cancel()

		Eventually(func() error {
			_, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
			return err
		}, time.Second, 10*time.Millisecond).Should(HaveOccurred())
	})
})
