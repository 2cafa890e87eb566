/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
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

package logger_test

import (
	"bytes"
	"encoding/json"
	"time"

	liblog "github.com/sabouaram/webcore/logger"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("[TC-LOG] Logger", func() {
	It("[TC-LOG-001] GetLevelString round-trips every name", func() {
		for _, name := range liblog.GetLevelListString() {
			Expect(liblog.GetLevelString(name).String()).ToNot(BeEmpty())
		}
		Expect(liblog.GetLevelString("bogus")).To(Equal(liblog.InfoLevel))
	})

	It("[TC-LOG-002] writes one JSON line per entry at the configured level", func() {
		buf := &bytes.Buffer{}
		l := liblog.New(liblog.WarnLevel, buf)

		l.Info("should be filtered", nil)
		Expect(buf.Len()).To(Equal(0))

		l.Error("boom", nil)
		Expect(buf.Len()).ToNot(Equal(0))

		var line map[string]interface{}
		Expect(json.Unmarshal(buf.Bytes(), &line)).To(Succeed())
		Expect(line["message"]).To(Equal("boom"))
	})

	It("[TC-LOG-003] CheckError logs the KO branch only when err is non-nil", func() {
		buf := &bytes.Buffer{}
		l := liblog.New(liblog.DebugLevel, buf)

		Expect(l.CheckError(liblog.ErrorLevel, liblog.InfoLevel, "op", nil)).To(BeFalse())
		Expect(buf.String()).To(ContainSubstring(`"level":"info"`))

		buf.Reset()
		Expect(l.CheckError(liblog.ErrorLevel, liblog.NilLevel, "op", ErrBoom)).To(BeTrue())
		Expect(buf.String()).To(ContainSubstring("boom"))
	})

	It("[TC-LOG-004] Access carries the per-request fields", func() {
		buf := &bytes.Buffer{}
		l := liblog.New(liblog.InfoLevel, buf)

		l.Access("10.0.0.1", "req-1", "GET", "/ping", 200, 12*time.Millisecond).Log()

		var line map[string]interface{}
		Expect(json.Unmarshal(buf.Bytes(), &line)).To(Succeed())
		Expect(line[liblog.FieldRemoteIP]).To(Equal("10.0.0.1"))
		Expect(line[liblog.FieldStatus]).To(BeNumerically("==", 200))
	})

	It("[TC-LOG-005] Clone copies fields but shares the underlying sink", func() {
		buf := &bytes.Buffer{}
		l := liblog.New(liblog.InfoLevel, buf)
		l.SetFields(liblog.NewFields().Add("service", "webcore"))

		c := l.Clone()
		Expect(c.GetFields()).To(HaveKeyWithValue("service", "webcore"))

		c.Info("from clone", nil)
		Expect(buf.Len()).ToNot(Equal(0))
	})
})

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

var ErrBoom error = errBoom{}
