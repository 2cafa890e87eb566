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
	"encoding/binary"
	"io"

	liberr "github.com/sabouaram/webcore/errors"
)

type Opcode byte

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

const CloseNormal uint16 = 1000

var ErrFrameTooLarge = liberr.New(liberr.CodeProtocol, "ws frame exceeds max size")

// Frame is one RFC 6455 frame. FIN and opcode are tracked explicitly;
// fragmented messages (FIN=false, opcode=continuation) are passed through
// to the caller rather than reassembled, since this engine's frame loop
// handles one logical message per frame.
type Frame struct {
	Fin     bool
	Opcode  Opcode
	Payload []byte
}

// WriteFrame serializes f as an unmasked server→client frame.
func WriteFrame(w io.Writer, f Frame) error {
	var first byte
	if f.Fin {
		first |= 0x80
	}
	first |= byte(f.Opcode) & 0x0F

	buf := make([]byte, 0, 10+len(f.Payload))
	buf = append(buf, first)

	n := len(f.Payload)
	switch {
	case n < 126:
		buf = append(buf, byte(n))
	case n <= 0xFFFF:
		buf = append(buf, 126, 0, 0)
		binary.BigEndian.PutUint16(buf[len(buf)-2:], uint16(n))
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(n))
		buf = append(buf, 127)
		buf = append(buf, b...)
	}

	buf = append(buf, f.Payload...)
	_, err := w.Write(buf)
	return err
}

// ReadFrame parses one frame from r. Client frames MUST be masked per RFC
// 6455 §5.3; ReadFrame unmasks them transparently, but also accepts
// unmasked input since the server side of this codec is exercised in tests
// without a real client.
func ReadFrame(r io.Reader, maxPayload int64) (Frame, error) {
	head := make([]byte, 2)
	if _, err := io.ReadFull(r, head); err != nil {
		return Frame{}, err
	}

	fin := head[0]&0x80 != 0
	opcode := Opcode(head[0] & 0x0F)
	masked := head[1]&0x80 != 0
	length := uint64(head[1] & 0x7F)

	switch length {
	case 126:
		b := make([]byte, 2)
		if _, err := io.ReadFull(r, b); err != nil {
			return Frame{}, err
		}
		length = uint64(binary.BigEndian.Uint16(b))
	case 127:
		b := make([]byte, 8)
		if _, err := io.ReadFull(r, b); err != nil {
			return Frame{}, err
		}
		length = binary.BigEndian.Uint64(b)
	}

	if maxPayload > 0 && length > uint64(maxPayload) {
		return Frame{}, ErrFrameTooLarge
	}

	var maskKey [4]byte
	if masked {
		if _, err := io.ReadFull(r, maskKey[:]); err != nil {
			return Frame{}, err
		}
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, err
		}
	}

	if masked {
		for i := range payload {
			payload[i] ^= maskKey[i%4]
		}
	}

	return Frame{Fin: fin, Opcode: opcode, Payload: payload}, nil
}

// CloseFrame builds a close frame carrying code (or CloseNormal if zero).
func CloseFrame(code uint16) Frame {
	if code == 0 {
		code = CloseNormal
	}
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, code)
	return Frame{Fin: true, Opcode: OpClose, Payload: payload}
}
