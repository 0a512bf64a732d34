/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package engineconfig_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/httpengine/engineconfig"
)

var _ = Describe("LoadConfig", func() {
	It("reads a yaml file, seeded with Default()'s limits for fields it omits", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "engine.yaml")

		body := "name: primary\n" +
			"listen: 127.0.0.1:9090\n" +
			"limits:\n" +
			"  headerSize: 2048\n"

		Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())

		cfg, err := engineconfig.LoadConfig(path)
		Expect(err).To(BeNil())
		Expect(cfg.Name).To(Equal("primary"))
		Expect(cfg.Listen).To(Equal("127.0.0.1:9090"))
		Expect(cfg.Limits.HeaderSize).To(Equal(int64(2048)))
		// BufferSize isn't in the file; LoadConfig seeds from Default() first,
		// but viper.Unmarshal only overwrites keys it finds, so the default
		// for an unset key survives.
		Expect(cfg.Limits.BufferSize).To(Equal(int64(4096)))
		Expect(cfg.Limits.InactivityTimeout).To(Equal(60 * time.Second))
	})

	It("returns an error when the file doesn't exist", func() {
		_, err := engineconfig.LoadConfig(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).ToNot(BeNil())
	})
})
