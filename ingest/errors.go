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

import liberr "github.com/sabouaram/webcore/errors"

var (
	ErrEndOfStream       = liberr.New(liberr.CodeTransport, "end of stream")
	ErrConnectionClosing = liberr.New(liberr.CodeTransport, "connection closing")
	ErrHeadTooLarge      = liberr.New(liberr.CodeProtocol, "request head exceeds max_header_size")
	ErrInvalidMethod     = liberr.New(liberr.CodeProtocol, "invalid request method token")
	ErrMalformedHead     = liberr.New(liberr.CodeProtocol, "malformed request head")
	ErrBodyTooLarge      = liberr.New(liberr.CodeResource, "body exceeds max_body_size")
	ErrMalformedChunk    = liberr.New(liberr.CodeProtocol, "malformed chunked body")
)
