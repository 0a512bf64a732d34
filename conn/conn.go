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

package conn

import (
	"bytes"
	"time"

	"github.com/nabbar/httpengine/engineconfig"
	"github.com/nabbar/httpengine/enginectx"
	"github.com/nabbar/httpengine/enginerr"
	"github.com/nabbar/httpengine/pipeline"
	"github.com/nabbar/httpengine/rx"
	"github.com/nabbar/httpengine/tx"
)

// Socket is the narrow I/O collaborator of spec.md §6: non-blocking
// read/write, EOF/pending-data probes, and a blocking-mode toggle for
// flushQueue's blocking path.
type Socket interface {
	Read(b []byte) (n int, err error)
	Write(b []byte) (n int, err error)
	HasPendingData() bool
	IsEOF() bool
	SetBlocking(blocking bool) error
	Close() error
}

// Dispatcher is the event-loop collaborator of spec.md §6: an embedder's
// reactor that a connection can register a one-shot timeout event on and
// block waiting for.
type Dispatcher interface {
	CreateEvent(delay time.Duration, fn func()) (handle interface{})
	RemoveEvent(handle interface{})
	WaitForEvent(timeout time.Duration)
}

// Conn is the per-connection state machine of spec §3/§4.1.
type Conn struct {
	State State

	Error      bool
	ConnError  bool
	MustClose  bool
	HTTP10     bool
	Upgraded   bool
	Async      bool
	Endpoint   bool

	pumping bool

	KeepAliveCount int

	Started      time.Time
	LastActivity time.Time

	Limits *engineconfig.Limits

	Sock       Socket
	Dispatcher Dispatcher

	input bytes.Buffer

	sched           *pipeline.Scheduler
	pipe            *pipeline.Pipeline
	chunkDec        *rx.ChunkDecoder
	contentComplete bool

	// Ctx carries the per-connection request-id/negotiated-TLS values a
	// handler or log line can read back out (spec §6's "well-known
	// values carried alongside a request"); stepFirst assigns a fresh
	// KeyRequestID into it once per request line parsed.
	Ctx enginectx.Store

	Rx *rx.Rx
	Tx *tx.Tx

	LastRaised *enginerr.Raised
}

// New returns a Conn at state BEGIN, grounded on httpCreateConn/
// httpCreateRx's "fresh Rx/Tx per request, fresh Conn per socket"
// lifecycle split: the Rx/Tx pair is (re)created by Reset at each
// COMPLETE->BEGIN transition on a keep-alive socket.
func New(sock Socket, disp Dispatcher, limits *engineconfig.Limits, endpoint bool) *Conn {
	now := time.Now()
	c := &Conn{
		State:        StateBegin,
		Sock:         sock,
		Dispatcher:   disp,
		Limits:       limits,
		Endpoint:     endpoint,
		Started:      now,
		LastActivity: now,
		Rx:           rx.New(),
		Tx:           tx.New(),
		sched:        pipeline.NewScheduler(),
		Ctx:          enginectx.New(nil),
	}
	if endpoint {
		c.KeepAliveCount = int(limits.KeepAliveMax)
	}
	return c
}

// touch records fresh activity, resetting the inactivity-timeout clock
// (spec §4.5).
func (c *Conn) touch() {
	c.LastActivity = time.Now()
}

// Feed appends freshly-read bytes to the connection's input buffer ahead
// of the next Pump call, the way a socket read callback hands its buffer
// to httpPumpRequest.
func (c *Conn) Feed(b []byte) {
	c.input.Write(b)
	c.touch()
}

// resetForNextRequest restores Rx/Tx for the next request on a persistent
// connection, following httpDestroyRx/httpCreateRx's per-request cycle.
func (c *Conn) resetForNextRequest() {
	c.Rx.Reset()
	c.Tx.Reset()
	c.pipe = nil
	c.chunkDec = nil
	c.contentComplete = false
	c.LastRaised = nil
	c.State = StateBegin
}

// ShouldPersist reports whether, after FINALIZED, the socket should stay
// open for another request (spec §4.2/§8 property 7): HTTP/1.1 persists by
// default unless Connection: close or the keep-alive budget is spent;
// HTTP/1.0 only persists with an explicit Connection: keep-alive.
func (c *Conn) ShouldPersist() bool {
	if c.MustClose || c.Error {
		return false
	}
	if c.KeepAliveCount <= 0 {
		return false
	}
	if c.Rx.HTTP10 && !c.Rx.KeepAliveHeader {
		return false
	}
	return true
}
