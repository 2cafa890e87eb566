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

package webctx

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/url"
)

const defaultMultipartMemory = 32 << 20

// multipartForm is a thin alias so context.go doesn't need to import
// mime/multipart directly.
type multipartForm = multipart.Form

// ParseJSON unmarshals the staged body into dest. The decoded value is not
// cached beyond this call since dest is caller-owned; repeat callers that
// want the generic form should use JSON instead.
func (c *Context) ParseJSON(dest interface{}) error {
	if err := json.Unmarshal(c.body, dest); err != nil {
		return errInvalidJSON(err)
	}
	return nil
}

// JSON lazily decodes the body into a generic interface{} and caches it for
// subsequent calls within the same request.
func (c *Context) JSON() (interface{}, error) {
	if c.jsonDone {
		return c.jsonCache, nil
	}
	var v interface{}
	if len(c.body) > 0 {
		if err := json.Unmarshal(c.body, &v); err != nil {
			return nil, errInvalidJSON(err)
		}
	}
	c.jsonCache = v
	c.jsonDone = true
	return v, nil
}

// ParseForm lazily parses an application/x-www-form-urlencoded body and
// caches the result.
func (c *Context) ParseForm() (url.Values, error) {
	if c.formDone {
		return c.formCache, nil
	}
	v, err := url.ParseQuery(string(c.body))
	if err != nil {
		return nil, err
	}
	c.formCache = v
	c.formDone = true
	return v, nil
}

// GetMultipart lazily parses a multipart/form-data body and caches the
// parsed form; ownership of the parsed form is transferred to the Context
// and released on Destroy.
func (c *Context) GetMultipart() (*multipartForm, error) {
	if c.multipartDone {
		return c.multipartForm, c.multipartError
	}
	c.multipartDone = true

	ct, _ := c.GetHeader("Content-Type")
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil || mediaType != "multipart/form-data" {
		c.multipartError = errBadMultipart(err)
		return nil, c.multipartError
	}

	boundary, ok := params["boundary"]
	if !ok {
		c.multipartError = errBadMultipart(nil)
		return nil, c.multipartError
	}

	reader := multipart.NewReader(bytes.NewReader(c.body), boundary)
	form, err := reader.ReadForm(defaultMultipartMemory)
	if err != nil {
		c.multipartError = errBadMultipart(err)
		return nil, c.multipartError
	}

	c.multipartForm = form
	return form, nil
}

// GetFile returns the first uploaded file under field name.
func (c *Context) GetFile(name string) (*multipart.FileHeader, bool) {
	form, err := c.GetMultipart()
	if err != nil || form == nil {
		return nil, false
	}
	files, ok := form.File[name]
	if !ok || len(files) == 0 {
		return nil, false
	}
	return files[0], true
}

// GetAllFiles returns every uploaded file across every field.
func (c *Context) GetAllFiles() map[string][]*multipart.FileHeader {
	form, err := c.GetMultipart()
	if err != nil || form == nil {
		return nil
	}
	return form.File
}

// Destroy releases parsed artifacts owned by the Context (the multipart
// form's backing temp files, in particular).
func (c *Context) Destroy() {
	if c.multipartForm != nil {
		_ = c.multipartForm.RemoveAll()
		c.multipartForm = nil
	}
}
