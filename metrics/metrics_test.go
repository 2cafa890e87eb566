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

package metrics_test

import (
	"net/http/httptest"

	"github.com/sabouaram/webcore/metrics"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("[TC-MET] Metrics", func() {
	It("[TC-MET-001] IncrementCounter/RecordHistogram/SetGauge don't panic on known series", func() {
		m := metrics.New()
		Expect(func() {
			m.IncrementCounter("http_requests_total", map[string]string{"method": "GET", "path": "/", "status": "200"})
			m.RecordHistogram("http_request_duration_seconds", 0.01, map[string]string{"method": "GET", "path": "/"})
			m.SetGauge("active_connections", 3, nil)
		}).ToNot(Panic())
	})

	It("[TC-MET-002] an unknown series name is a no-op, not a panic", func() {
		m := metrics.New()
		Expect(func() { m.IncrementCounter("nonexistent", nil) }).ToNot(Panic())
	})

	It("[TC-MET-003] Handler serves the scrape endpoint", func() {
		m := metrics.New()
		m.IncrementCounter("pool_acquire_total", map[string]string{"host": "example.com:443"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/metrics", nil)
		metrics.Handler(m).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(200))
		Expect(rec.Body.String()).To(ContainSubstring("pool_acquire_total"))
	})
})
