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
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	FieldTime     = "time"
	FieldLevel    = "level"
	FieldMessage  = "message"
	FieldError    = "error"
	FieldData     = "data"
	FieldRequest  = "request_id"
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration"
	FieldRemoteIP = "remote_ip"
)

// Entry is one in-flight log record: a level, a message, a set of errors and
// fields, that gets rendered to the underlying logrus.Logger on Log.
type Entry struct {
	log func() *logrus.Logger

	Time    time.Time
	Level   Level
	Message string
	Error   []error
	Data    interface{}
	Fields  Fields
}

func (e *Entry) FieldAdd(key string, val interface{}) *Entry {
	e.Fields = e.Fields.Add(key, val)
	return e
}

func (e *Entry) FieldMerge(fields Fields) *Entry {
	e.Fields = e.Fields.Merge(fields)
	return e
}

func (e *Entry) DataSet(data interface{}) *Entry {
	e.Data = data
	return e
}

func (e *Entry) ErrorAdd(cleanNil bool, err ...error) *Entry {
	for _, er := range err {
		if cleanNil && er == nil {
			continue
		}
		e.Error = append(e.Error, er)
	}
	return e
}

// Log renders the entry through the bound logrus.Logger. A nil-returning log
// func (the logger was never attached) makes this a no-op.
func (e *Entry) Log() {
	if e.log == nil {
		return
	}

	l := e.log()
	if l == nil {
		return
	}

	tag := NewFields()
	if !e.Time.IsZero() {
		tag = tag.Add(FieldTime, e.Time.Format(time.RFC3339Nano))
	}
	if e.Message != "" {
		tag = tag.Add(FieldMessage, e.Message)
	}
	if e.Data != nil {
		tag = tag.Add(FieldData, e.Data)
	}
	if len(e.Error) > 0 {
		msg := make([]string, 0, len(e.Error))
		for _, er := range e.Error {
			if er == nil {
				continue
			}
			msg = append(msg, er.Error())
		}
		if len(msg) > 0 {
			tag = tag.Add(FieldError, strings.Join(msg, ", "))
		}
	}
	if len(e.Fields) > 0 {
		tag = tag.Merge(e.Fields)
	}

	if e.Level == NilLevel {
		return
	}

	l.WithFields(tag.Logrus()).Log(e.Level.Logrus())
}
