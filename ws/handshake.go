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

// Package ws implements the RFC 6455 upgrade handshake, the frame codec,
// and a broadcast-capable registry of live connections.
package ws

import (
	"crypto/sha1"
	"encoding/base64"
	"io"
	"strings"

	liberr "github.com/sabouaram/webcore/errors"
	"github.com/sabouaram/webcore/response"
)

const handshakeGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var ErrMissingKey = liberr.New(liberr.CodeProtocol, "missing Sec-WebSocket-Key")

// AcceptKey derives the Sec-WebSocket-Accept value from the client's
// Sec-WebSocket-Key per RFC 6455 §1.3.
func AcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(handshakeGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// IsUpgradeRequest reports whether the request head asks for a WebSocket
// upgrade: Upgrade: websocket plus a Connection header naming Upgrade.
func IsUpgradeRequest(h *response.Headers) bool {
	if !strings.EqualFold(h.Get("Upgrade"), "websocket") {
		return false
	}
	return strings.Contains(strings.ToLower(h.Get("Connection")), "upgrade")
}

// Handshake writes the standard 101 response accepting the upgrade.
func Handshake(w io.Writer, headers *response.Headers) error {
	key := headers.Get("Sec-WebSocket-Key")
	if key == "" {
		return ErrMissingKey
	}

	accept := AcceptKey(key)
	msg := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n\r\n"

	_, err := w.Write([]byte(msg))
	return err
}
