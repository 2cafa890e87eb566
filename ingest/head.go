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

// Package ingest parses an HTTP/1.1 request off the wire: the start line and
// header block (head.go) and the body, including chunked transfer-encoding
// and the Expect: 100-continue interim response (body.go).
package ingest

import (
	"bufio"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/sabouaram/webcore/response"
)

// RequestHead is the parsed start line plus header block of one HTTP/1.1
// request.
type RequestHead struct {
	Method    string
	Target    string
	Path      string
	RawQuery  string
	Proto     string
	Headers   response.Headers
	KeepAlive bool
}

func isTokenChar(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

func isValidMethod(m string) bool {
	if m == "" {
		return false
	}
	for i := 0; i < len(m); i++ {
		if !isTokenChar(m[i]) {
			return false
		}
	}
	return true
}

// ParseHead reads the start line and header block from r, enforcing
// maxHeaderSize across the whole head (start line plus every header line up
// to the terminating blank line).
func ParseHead(r *bufio.Reader, maxHeaderSize int) (*RequestHead, error) {
	var total int

	line, err := readLine(r, maxHeaderSize, &total)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, ErrEndOfStream
	}

	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, ErrMalformedHead
	}

	method, target, proto := parts[0], parts[1], parts[2]
	if !isValidMethod(method) {
		return nil, ErrInvalidMethod
	}

	h := &RequestHead{
		Method:  method,
		Target:  target,
		Proto:   proto,
		Headers: response.NewHeaders(),
	}

	if i := strings.IndexByte(target, '?'); i >= 0 {
		h.Path, h.RawQuery = target[:i], target[i+1:]
	} else {
		h.Path = target
	}

	for {
		line, err = readLine(r, maxHeaderSize, &total)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}

		i := strings.IndexByte(line, ':')
		if i < 0 {
			return nil, ErrMalformedHead
		}

		name := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
			return nil, ErrMalformedHead
		}
		h.Headers.Add(name, value)
	}

	h.KeepAlive = computeKeepAlive(h.Proto, h.Headers.Get("Connection"))

	return h, nil
}

func computeKeepAlive(proto, connection string) bool {
	c := strings.ToLower(connection)
	switch c {
	case "close":
		return false
	case "keep-alive":
		return true
	}
	return strings.EqualFold(proto, "HTTP/1.1")
}

// readLine reads one CRLF-terminated line (without the CRLF), enforcing the
// cumulative byte budget in total against max.
func readLine(r *bufio.Reader, max int, total *int) (string, error) {
	raw, err := r.ReadString('\n')
	if err != nil {
		if raw == "" {
			return "", ErrEndOfStream
		}
		return "", ErrConnectionClosing
	}

	*total += len(raw)
	if max > 0 && *total > max {
		return "", ErrHeadTooLarge
	}

	raw = strings.TrimRight(raw, "\r\n")
	return raw, nil
}

// ContentLength parses the Content-Length header, returning -1 when absent
// or malformed (the caller treats a malformed value the same as absent and
// falls back to "no body").
func ContentLength(h *response.Headers) int64 {
	v := h.Get("Content-Length")
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func IsChunked(h *response.Headers) bool {
	return strings.EqualFold(h.Get("Transfer-Encoding"), "chunked")
}

func ExpectsContinue(h *response.Headers) bool {
	return strings.EqualFold(h.Get("Expect"), "100-continue")
}
