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

package enginesrv

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"
)

// netSocket adapts a net.Conn to conn.Socket, the narrow I/O collaborator
// spec.md §6 requires (non-blocking read/write, EOF/pending-data probes,
// a blocking-mode toggle). Go's net.Conn is inherently blocking per call,
// so "non-blocking" is approximated with short read deadlines the way a
// cooperative single-threaded reactor would poll a raw descriptor; reads
// go through a bufio.Reader so a pending-data probe never discards bytes.
type netSocket struct {
	c   net.Conn
	r   *bufio.Reader
	eof atomic.Bool
}

func newNetSocket(c net.Conn) *netSocket {
	return &netSocket{c: c, r: bufio.NewReader(c)}
}

func (s *netSocket) Read(b []byte) (int, error) {
	n, err := s.r.Read(b)
	if err != nil {
		s.eof.Store(true)
	}
	return n, err
}

func (s *netSocket) Write(b []byte) (int, error) {
	return s.c.Write(b)
}

func (s *netSocket) HasPendingData() bool {
	if s.r.Buffered() > 0 {
		return true
	}
	_ = s.c.SetReadDeadline(time.Now().Add(time.Millisecond))
	defer s.c.SetReadDeadline(time.Time{})

	_, err := s.r.Peek(1)
	return err == nil
}

func (s *netSocket) IsEOF() bool {
	return s.eof.Load()
}

func (s *netSocket) SetBlocking(blocking bool) error {
	if blocking {
		return s.c.SetDeadline(time.Time{})
	}
	return s.c.SetDeadline(time.Now())
}

func (s *netSocket) Close() error {
	return s.c.Close()
}
