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

package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"golang.org/x/sync/singleflight"
)

// FileStore persists each session as "<id>.json" in dir and caches reads in
// an in-memory layer: reads fall through to file on miss, writes update
// both layers, destroy deletes both. Concurrent cache misses for the same
// id are coalesced through reads so a burst of requests for one session
// doesn't turn into a burst of redundant disk reads.
type FileStore struct {
	dir   string
	cache *MemoryStore
	reads singleflight.Group
}

// NewFileStore expands a leading ~ in dir and ensures it exists.
func NewFileStore(dir string, maxAge, cleanupInterval time.Duration) (*FileStore, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(expanded, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: expanded, cache: NewMemoryStore(maxAge, cleanupInterval)}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStore) Get(id string) (*Session, bool) {
	if sess, ok := f.cache.Get(id); ok {
		return sess, true
	}

	v, err, _ := f.reads.Do(id, func() (interface{}, error) {
		raw, err := os.ReadFile(f.path(id))
		if err != nil {
			return nil, err
		}

		var doc sessionDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}

		sess := fromDoc(doc)
		_ = f.cache.Save(sess)
		return sess, nil
	})
	if err != nil {
		return nil, false
	}
	return v.(*Session), true
}

func (f *FileStore) Save(sess *Session) error {
	if err := f.cache.Save(sess); err != nil {
		return err
	}

	raw, err := json.Marshal(sess.snapshot())
	if err != nil {
		return err
	}
	return writeFileAtomic(f.dir, f.path(sess.ID()), raw, 0o600)
}

// writeFileAtomic writes data to a temp file created in dir (the same
// directory as final, so the rename below stays on one filesystem) and
// renames it over final, so a reader never observes a partially written
// session document even if the process dies mid-write.
func writeFileAtomic(dir, final string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (f *FileStore) Destroy(id string) error {
	_ = f.cache.Destroy(id)
	err := os.Remove(f.path(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileStore) Close() {
	f.cache.Close()
}
