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

package ws

import (
	"io"
	"sync"
)

// Conn wraps the raw stream with a write mutex, since Broadcast and the
// connection's own frame loop can both send concurrently.
type Conn struct {
	ID  string
	raw io.ReadWriter
	mu  sync.Mutex
}

func NewConn(id string, raw io.ReadWriter) *Conn {
	return &Conn{ID: id, raw: raw}
}

// Send writes f, serialized, under the connection's write lock.
func (c *Conn) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteFrame(c.raw, f)
}

// SendText is a convenience for the common case.
func (c *Conn) SendText(msg string) error {
	return c.Send(Frame{Fin: true, Opcode: OpText, Payload: []byte(msg)})
}

// Close sends a close frame carrying code and closes the underlying stream
// if it supports io.Closer.
func (c *Conn) Close(code uint16) error {
	_ = c.Send(CloseFrame(code))
	if closer, ok := c.raw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// MessageHandler receives each non-control frame the loop reads. The
// control frames (ping/pong/close) are handled by Loop itself.
type MessageHandler func(c *Conn, f Frame) error

// Loop reads frames from c until a close frame, an error, or onMessage
// returns an error, answering ping with pong and close with a matching
// close frame per RFC 6455.
func Loop(c *Conn, maxPayload int64, onMessage MessageHandler) error {
	for {
		f, err := ReadFrame(c.raw, maxPayload)
		if err != nil {
			return err
		}

		switch f.Opcode {
		case OpClose:
			code := CloseNormal
			if len(f.Payload) >= 2 {
				code = uint16(f.Payload[0])<<8 | uint16(f.Payload[1])
			}
			return c.Close(code)

		case OpPing:
			if err := c.Send(Frame{Fin: true, Opcode: OpPong, Payload: f.Payload}); err != nil {
				return err
			}

		case OpPong:
			// no action required

		default:
			if onMessage != nil {
				if err := onMessage(c, f); err != nil {
					return err
				}
			}
		}
	}
}
