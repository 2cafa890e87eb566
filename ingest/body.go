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

package ingest

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

// ReadBody drains the body of the request described by head from r, honoring
// Expect: 100-continue (written to continueWriter before the body is read),
// chunked transfer-encoding, and Content-Length, all bounded by
// maxBodySize. A nil continueWriter silently skips the interim response,
// which callers rely on in tests that never wire a socket.
func ReadBody(r *bufio.Reader, head *RequestHead, maxBodySize int64, continueWriter io.Writer) ([]byte, error) {
	if ExpectsContinue(&head.Headers) && continueWriter != nil {
		if _, err := continueWriter.Write([]byte("HTTP/1.1 100 Continue\r\n\r\n")); err != nil {
			return nil, err
		}
	}

	switch {
	case IsChunked(&head.Headers):
		return readChunked(r, maxBodySize)
	default:
		n := ContentLength(&head.Headers)
		if n <= 0 {
			return nil, nil
		}
		if maxBodySize > 0 && n > maxBodySize {
			return nil, ErrBodyTooLarge
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, ErrConnectionClosing
		}
		return buf, nil
	}
}

func readChunked(r *bufio.Reader, maxBodySize int64) ([]byte, error) {
	var out bytes.Buffer
	var total int64

	for {
		sizeLine, err := r.ReadString('\n')
		if err != nil {
			return nil, ErrConnectionClosing
		}
		sizeLine = strings.TrimRight(sizeLine, "\r\n")
		if i := strings.IndexByte(sizeLine, ';'); i >= 0 {
			sizeLine = sizeLine[:i]
		}

		size, err := strconv.ParseInt(strings.TrimSpace(sizeLine), 16, 64)
		if err != nil || size < 0 {
			return nil, ErrMalformedChunk
		}

		if size == 0 {
			for {
				trailer, err := r.ReadString('\n')
				if err != nil {
					return nil, ErrConnectionClosing
				}
				if strings.TrimRight(trailer, "\r\n") == "" {
					break
				}
			}
			return out.Bytes(), nil
		}

		total += size
		if maxBodySize > 0 && total > maxBodySize {
			return nil, ErrBodyTooLarge
		}

		chunk := make([]byte, size)
		if _, err = io.ReadFull(r, chunk); err != nil {
			return nil, ErrConnectionClosing
		}
		out.Write(chunk)

		crlf := make([]byte, 2)
		if _, err = io.ReadFull(r, crlf); err != nil || crlf[0] != '\r' || crlf[1] != '\n' {
			return nil, ErrMalformedChunk
		}
	}
}
