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

package response

import "strings"

type headerEntry struct {
	name   string
	values []string
}

// Headers is a case-insensitive-lookup, case-preserved-write-out, ordered
// header bag: lookups key off the lowercased name, but the name as first
// set is what gets written to the wire, in the order it was first set.
type Headers struct {
	order []string
	byKey map[string]*headerEntry
}

func newHeaders() Headers {
	return Headers{byKey: make(map[string]*headerEntry, 8)}
}

// NewHeaders returns an empty Headers bag, exported so other packages (the
// request-ingestion head parser in particular) can reuse the same
// case-insensitive, order-preserving storage instead of rolling their own.
func NewHeaders() Headers {
	return newHeaders()
}

func (h *Headers) key(name string) string {
	return strings.ToLower(name)
}

// Set replaces any existing values for name with a single value.
func (h *Headers) Set(name, value string) {
	k := h.key(name)
	if e, ok := h.byKey[k]; ok {
		e.values = []string{value}
		return
	}
	h.byKey[k] = &headerEntry{name: name, values: []string{value}}
	h.order = append(h.order, k)
}

// Add appends value to any existing values for name, preserving multi-value
// headers such as Set-Cookie.
func (h *Headers) Add(name, value string) {
	k := h.key(name)
	if e, ok := h.byKey[k]; ok {
		e.values = append(e.values, value)
		return
	}
	h.byKey[k] = &headerEntry{name: name, values: []string{value}}
	h.order = append(h.order, k)
}

// Get returns the first value for name, or "" if unset.
func (h *Headers) Get(name string) string {
	if e, ok := h.byKey[h.key(name)]; ok && len(e.values) > 0 {
		return e.values[0]
	}
	return ""
}

// Values returns every value stored under name.
func (h *Headers) Values(name string) []string {
	if e, ok := h.byKey[h.key(name)]; ok {
		return append([]string(nil), e.values...)
	}
	return nil
}

// Has reports whether name has at least one value set.
func (h *Headers) Has(name string) bool {
	_, ok := h.byKey[h.key(name)]
	return ok
}

// Del removes name and all of its values.
func (h *Headers) Del(name string) {
	k := h.key(name)
	if _, ok := h.byKey[k]; !ok {
		return
	}
	delete(h.byKey, k)
	for i, o := range h.order {
		if o == k {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Range walks headers in insertion order, one call per (name, value) pair.
func (h *Headers) Range(fn func(name, value string)) {
	for _, k := range h.order {
		e := h.byKey[k]
		for _, v := range e.values {
			fn(e.name, v)
		}
	}
}

func (h *Headers) reset() {
	h.order = h.order[:0]
	for k := range h.byKey {
		delete(h.byKey, k)
	}
}
