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

package enginectx_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/httpengine/enginectx"
)

var _ = Describe("New", func() {
	It("defaults to context.Background when parent is nil", func() {
		s := enginectx.New(nil)
		Expect(s).ToNot(BeNil())
		Expect(s.GetContext()).To(Equal(context.Background()))
		Expect(s.Err()).To(BeNil())
	})

	It("carries the given parent's cancellation", func() {
		parent, cancel := context.WithCancel(context.Background())
		s := enginectx.New(parent)

		Expect(s.Err()).To(BeNil())
		cancel()
		Expect(s.Err()).To(Equal(context.Canceled))

		select {
		case <-s.Done():
		default:
			Fail("Store's Done channel should be closed once the parent is canceled")
		}
	})
})

var _ = Describe("Store / Load / Delete", func() {
	It("round-trips a value under a well-known key", func() {
		s := enginectx.New(nil)
		s.Store(string(enginectx.KeyRequestID), "req-1")

		v, ok := s.Load(string(enginectx.KeyRequestID))
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("req-1"))
	})

	It("removes the value on Delete", func() {
		s := enginectx.New(nil)
		s.Store(string(enginectx.KeyRemoteTLS), true)
		s.Delete(string(enginectx.KeyRemoteTLS))

		_, ok := s.Load(string(enginectx.KeyRemoteTLS))
		Expect(ok).To(BeFalse())
	})

	It("treats a nil value as a deletion, per the underlying map's Store contract", func() {
		s := enginectx.New(nil)
		s.Store(string(enginectx.KeyRequestID), "req-1")
		s.Store(string(enginectx.KeyRequestID), nil)

		_, ok := s.Load(string(enginectx.KeyRequestID))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Derive", func() {
	It("copies the parent's stored values into an independent map", func() {
		parent := enginectx.New(nil)
		parent.Store(string(enginectx.KeyRequestID), "req-1")

		child := enginectx.Derive(parent)
		v, ok := child.Load(string(enginectx.KeyRequestID))
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("req-1"))

		child.Store(string(enginectx.KeyRequestID), "req-2")
		pv, _ := parent.Load(string(enginectx.KeyRequestID))
		Expect(pv).To(Equal("req-1"))
	})

	It("shares the parent's underlying context, so canceling the parent cancels the child", func() {
		p, cancel := context.WithCancel(context.Background())
		parent := enginectx.New(p)
		child := enginectx.Derive(parent)

		cancel()
		Expect(child.Err()).To(Equal(context.Canceled))
	})
})
