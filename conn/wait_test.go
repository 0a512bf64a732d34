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

package conn_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/httpengine/conn"
	"github.com/nabbar/httpengine/engineconfig"
)

var _ = Describe("Conn.WaitForState", func() {
	It("returns immediately once already at or past the target state", func() {
		limits := &engineconfig.Limits{RequestTimeout: time.Second, InactivityTimeout: time.Millisecond}
		c := conn.New(&fakeSocket{}, &fakeDispatcher{}, limits, true)

		err := c.WaitForState(conn.StateBegin, time.Second, nil)
		Expect(err).To(BeNil())
	})

	It("reports ErrClosed when the socket is already at EOF", func() {
		limits := &engineconfig.Limits{RequestTimeout: time.Second, InactivityTimeout: time.Millisecond}
		sock := &fakeSocket{eof: func() bool { return true }}
		c := conn.New(sock, &fakeDispatcher{}, limits, true)

		err := c.WaitForState(conn.StateConnected, time.Second, nil)
		Expect(err).To(Equal(conn.ErrClosed))
	})

	It("reports ErrTimeout once the deadline elapses with no progress", func() {
		limits := &engineconfig.Limits{RequestTimeout: 20 * time.Millisecond, InactivityTimeout: time.Millisecond}
		sock := &fakeSocket{}
		c := conn.New(sock, &fakeDispatcher{}, limits, true)

		err := c.WaitForState(conn.StateConnected, 0, nil)
		Expect(err).To(Equal(conn.ErrTimeout))
	})

	It("reports ErrClosed if the peer closes mid-wait without reaching target", func() {
		limits := &engineconfig.Limits{RequestTimeout: time.Second, InactivityTimeout: time.Millisecond}
		closed := false
		sock := &fakeSocket{eof: func() bool { return closed }}
		c := conn.New(sock, &fakeDispatcher{}, limits, true)

		// Flip to closed only after WaitForState's first polling pass, by
		// having HasPendingData's first invocation perform the flip.
		first := true
		sock.pending = func() bool {
			if first {
				first = false
				closed = true
			}
			return false
		}

		err := c.WaitForState(conn.StateConnected, time.Second, nil)
		Expect(err).To(Equal(conn.ErrClosed))
	})

	It("advances once fed bytes push the connection past the target", func() {
		limits := &engineconfig.Limits{RequestTimeout: time.Second, InactivityTimeout: 5 * time.Millisecond}
		delivered := false
		sock := &fakeSocket{}
		sock.pending = func() bool { return !delivered }
		sock.read = func(b []byte) (int, error) {
			delivered = true
			n := copy(b, []byte("x"))
			return n, nil
		}
		c := conn.New(sock, &fakeDispatcher{}, limits, true)

		err := c.WaitForState(conn.StateConnected, time.Second, nil)
		Expect(err).To(BeNil())
		Expect(c.State).To(BeNumerically(">=", conn.StateConnected))
	})
})
