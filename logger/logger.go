/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type lgr struct {
	m sync.RWMutex
	l *logrus.Logger
	f Fields
}

func (l *lgr) init(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	l.l = logrus.New()
	l.l.SetOutput(w)
	l.l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	l.f = NewFields()
}

func (l *lgr) log() *logrus.Logger {
	l.m.RLock()
	defer l.m.RUnlock()

	return l.l
}

func (l *lgr) Write(p []byte) (int, error) {
	l.Entry(InfoLevel, string(p)).Log()
	return len(p), nil
}

func (l *lgr) SetLevel(lvl Level) {
	l.m.Lock()
	defer l.m.Unlock()

	l.l.SetLevel(lvl.Logrus())
}

func (l *lgr) GetLevel() Level {
	l.m.RLock()
	defer l.m.RUnlock()

	switch l.l.GetLevel() {
	case logrus.DebugLevel:
		return DebugLevel
	case logrus.InfoLevel:
		return InfoLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.FatalLevel:
		return FatalLevel
	case logrus.PanicLevel:
		return PanicLevel
	default:
		return NilLevel
	}
}

func (l *lgr) SetOutput(w io.Writer) {
	l.m.Lock()
	defer l.m.Unlock()

	l.l.SetOutput(w)
}

func (l *lgr) SetFields(field Fields) {
	l.m.Lock()
	defer l.m.Unlock()

	l.f = field
}

func (l *lgr) GetFields() Fields {
	l.m.RLock()
	defer l.m.RUnlock()

	return l.f
}

func (l *lgr) Clone() Logger {
	l.m.RLock()
	defer l.m.RUnlock()

	n := &lgr{l: l.l, f: l.f.clone()}
	return n
}

func (l *lgr) Entry(lvl Level, message string) *Entry {
	return &Entry{
		log:     l.log,
		Time:    time.Now(),
		Level:   lvl,
		Message: message,
		Fields:  l.GetFields(),
	}
}

func (l *lgr) Debug(message string, data interface{}) {
	l.Entry(DebugLevel, message).DataSet(data).Log()
}

func (l *lgr) Info(message string, data interface{}) {
	l.Entry(InfoLevel, message).DataSet(data).Log()
}

func (l *lgr) Warning(message string, data interface{}) {
	l.Entry(WarnLevel, message).DataSet(data).Log()
}

func (l *lgr) Error(message string, data interface{}) {
	l.Entry(ErrorLevel, message).DataSet(data).Log()
}

func (l *lgr) Fatal(message string, data interface{}) {
	l.Entry(FatalLevel, message).DataSet(data).Log()
}

func (l *lgr) CheckError(lvlKO, lvlOK Level, message string, err error) bool {
	if err != nil {
		l.Entry(lvlKO, message).ErrorAdd(true, err).Log()
		return true
	}

	if lvlOK != NilLevel {
		l.Entry(lvlOK, message).Log()
	}

	return false
}

// Access renders the one-line-per-request summary the connection loop emits
// once a response has been fully written.
func (l *lgr) Access(remoteIP, requestID, method, path string, status int, latency time.Duration) *Entry {
	return l.Entry(InfoLevel, "request completed").FieldMerge(NewFields().
		Add(FieldRemoteIP, remoteIP).
		Add(FieldRequest, requestID).
		Add(FieldMethod, method).
		Add(FieldPath, path).
		Add(FieldStatus, status).
		Add(FieldDuration, latency.String()))
}
