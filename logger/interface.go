/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package logger

import (
	"io"
	"time"
)

// Logger is the structured logging collaborator every core component is
// handed at construction. It never panics and never blocks the connection
// loop: SetOutput/SetLevel may be called concurrently with the log methods.
type Logger interface {
	io.Writer

	SetLevel(lvl Level)
	GetLevel() Level

	SetOutput(w io.Writer)

	SetFields(field Fields)
	GetFields() Fields

	Clone() Logger

	Debug(message string, data interface{})
	Info(message string, data interface{})
	Warning(message string, data interface{})
	Error(message string, data interface{})
	Fatal(message string, data interface{})

	// CheckError logs err at lvlKO when non-nil, or at lvlOK otherwise, and
	// reports whether an error was logged.
	CheckError(lvlKO, lvlOK Level, message string, err error) bool

	Entry(lvl Level, message string) *Entry

	// Access renders one completed-request line with the fields the
	// connection loop's access logger always carries.
	Access(remoteIP, requestID, method, path string, status int, latency time.Duration) *Entry
}

// New returns a Logger writing to w (os.Stdout if w is nil) at lvl.
func New(lvl Level, w io.Writer) Logger {
	l := &lgr{}
	l.init(w)
	l.SetLevel(lvl)

	return l
}
