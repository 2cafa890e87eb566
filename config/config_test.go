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

package config_test

import (
	"os"
	"path/filepath"
	"time"

	libcfg "github.com/sabouaram/webcore/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("[TC-CFG] ServerConfig", func() {
	It("[TC-CFG-001] applies defaults when no file is given", func() {
		cfg, err := libcfg.Load("")
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Port).To(Equal(8080))
		Expect(cfg.MaxConnections).To(Equal(1024))
	})

	It("[TC-CFG-002] overlays values from a YAML file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "server.yaml")
		Expect(os.WriteFile(path, []byte("name: edge\nhost: 127.0.0.1\nport: 9090\n"), 0o600)).To(Succeed())

		cfg, err := libcfg.Load(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Name).To(Equal("edge"))
		Expect(cfg.Port).To(Equal(9090))
	})

	It("[TC-CFG-003] rejects a port outside the valid range", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "server.yaml")
		Expect(os.WriteFile(path, []byte("port: 70000\n"), 0o600)).To(Succeed())

		_, err := libcfg.Load(path)
		Expect(err).To(HaveOccurred())
	})

	It("[TC-CFG-004] decodes duration strings", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "server.yaml")
		Expect(os.WriteFile(path, []byte("request_timeout: 2s\n"), 0o600)).To(Succeed())

		cfg, err := libcfg.Load(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.RequestTimeout).To(Equal(2 * time.Second))
	})

	It("[TC-CFG-005] Clone returns an independent copy", func() {
		cfg, err := libcfg.Load("")
		Expect(err).ToNot(HaveOccurred())

		clone := cfg.Clone()
		clone.Port = 1

		Expect(cfg.Port).To(Equal(8080))
	})
})
