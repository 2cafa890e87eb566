/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

import (
	"strings"
)

// Error is the interface satisfied by every error this engine returns from
// a core component. It behaves as a normal `error` but also exposes the
// Code taxonomy and a chain of parent causes, so a handler can log the full
// cause chain with one call while the pipeline picks a status with another.
type Error interface {
	error

	// Code returns this error's own kind, ignoring parents.
	Code() Code

	// HasCode reports whether this error or any of its parents carries code.
	HasCode(code Code) bool

	// AddParent appends causes to this error's parent chain. Nil errors are
	// ignored so call sites can pass the result of a fallible call directly.
	AddParent(parent ...error)

	// HasParent reports whether any parent has been recorded.
	HasParent() bool

	// Parents returns the direct parent chain, closest cause first.
	Parents() []error
}

type ers struct {
	code    Code
	message string
	parent  []error
}

// New returns an Error with the given code and message and no parents.
func New(code Code, message string) Error {
	return &ers{code: code, message: message}
}

// Wrap returns an Error with the given code and message, wrapping cause as
// its sole parent. A nil cause yields an Error with no parent.
func Wrap(code Code, message string, cause error) Error {
	e := &ers{code: code, message: message}
	if cause != nil {
		e.parent = []error{cause}
	}
	return e
}

func (e *ers) Error() string {
	if e == nil {
		return ""
	}

	if len(e.parent) == 0 {
		return e.message
	}

	parts := make([]string, 0, len(e.parent)+1)
	parts = append(parts, e.message)
	for _, p := range e.parent {
		parts = append(parts, p.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *ers) Code() Code {
	if e == nil {
		return CodeUnknown
	}
	return e.code
}

func (e *ers) HasCode(code Code) bool {
	if e == nil {
		return false
	}

	if e.code == code {
		return true
	}

	for _, p := range e.parent {
		if pe, ok := p.(Error); ok && pe.HasCode(code) {
			return true
		}
	}

	return false
}

func (e *ers) AddParent(parent ...error) {
	for _, p := range parent {
		if p == nil {
			continue
		}
		e.parent = append(e.parent, p)
	}
}

func (e *ers) HasParent() bool {
	return e != nil && len(e.parent) > 0
}

func (e *ers) Parents() []error {
	if e == nil {
		return nil
	}
	return e.parent
}

// Unwrap exposes the first parent so errors.Is/errors.As from the standard
// library keep working across this chain.
func (e *ers) Unwrap() error {
	if e == nil || len(e.parent) == 0 {
		return nil
	}
	return e.parent[0]
}

// StatusCode is a convenience that recovers the wire status from err's own
// Code when err itself is one of this package's Error values, and falls back
// to 500 otherwise (a wrapped Error further down a chain is not looked up) —
// used by the middleware pipeline's error responder.
func StatusCode(err error) int {
	if e, ok := err.(Error); ok {
		return e.Code().StatusCode()
	}
	return CodeApplication.StatusCode()
}
