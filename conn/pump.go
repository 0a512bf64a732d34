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

	"github.com/google/uuid"

	"github.com/nabbar/httpengine/enginectx"
	"github.com/nabbar/httpengine/enginerr"
	"github.com/nabbar/httpengine/rx"
)

// Handler is the content-generation collaborator spec.md §1 explicitly
// places out of scope ("handlers supply bodies through the pipeline
// interface"): it reads the finished Rx and writes a response onto Tx.
// A nil Handler means "no application wired", answered with a stub 404.
type Handler func(c *Conn) error

// Pump is the central state-machine driver of spec.md §4.1: it is called
// whenever new bytes arrive or the write buffer drains, and re-enters
// (rather than recurses) thanks to the pumping guard, mirroring
// httpPumpRequest's "while (canProceed) switch(conn->state)" loop.
func (c *Conn) Pump(handler Handler) *enginerr.Raised {
	if c.pumping {
		return nil
	}
	c.pumping = true
	defer func() { c.pumping = false }()

	for {
		canProceed, raised := c.step(handler)
		if raised != nil {
			c.raise(raised)
		}
		if !canProceed {
			return c.LastRaised
		}
		if c.State == StateComplete {
			return c.LastRaised
		}
	}
}

// raise records an error the way httpError/httpBadRequestError/
// httpLimitError do: force keepAliveCount to 0, mark connError when
// severity is ABORT (headers are no longer recoverable), and let the
// state machine continue toward FINALIZED/COMPLETE rather than rewind
// (spec §4.7/§7).
func (c *Conn) raise(r *enginerr.Raised) {
	c.Error = true
	c.LastRaised = r
	c.KeepAliveCount = 0
	c.Tx.Status = r.Status

	switch r.Severity {
	case enginerr.SeverityAbort:
		c.ConnError = true
		c.MustClose = true
	case enginerr.SeverityClose:
		c.MustClose = true
	}

	if c.State < StateRunning {
		c.State = StateRunning
	}
}

// step executes one state's worth of work and reports whether the pump
// loop should immediately continue to the next state (canProceed) or
// return control to the caller awaiting more I/O.
func (c *Conn) step(handler Handler) (canProceed bool, raised *enginerr.Raised) {
	switch c.State {
	case StateBegin:
		c.State = StateConnected
		return true, nil

	case StateConnected:
		if c.input.Len() == 0 {
			return false, nil
		}
		c.State = StateFirst
		return true, nil

	case StateFirst:
		return c.stepFirst()

	case StateParsed:
		return c.stepParsed()

	case StateContent:
		return c.stepContent()

	case StateReady:
		c.State = StateRunning
		return true, nil

	case StateRunning:
		return c.stepRunning(handler)

	case StateFinalized:
		return c.stepFinalized()

	case StateComplete:
		return false, nil
	}

	return false, nil
}

// stepFirst looks for the CRLF-terminated request line; if it isn't fully
// buffered yet it asks for more bytes instead of blocking (spec §4.2).
func (c *Conn) stepFirst() (bool, *enginerr.Raised) {
	raw := c.input.Bytes()
	idx := bytes.Index(raw, []byte("\r\n"))
	if idx < 0 {
		if c.Limits.URISize > 0 && int64(len(raw)) > c.Limits.URISize*2 {
			return true, enginerr.Raise(enginerr.ErrLimitExceeded, 414, enginerr.SeverityAbort)
		}
		return false, nil
	}

	line := raw[:idx]
	c.input.Next(idx + 2)

	if raised := c.Rx.ParseRequestLine(line, c.Limits.URISize); raised != nil {
		return true, raised
	}

	c.Ctx.Store(string(enginectx.KeyRequestID), uuid.NewString())

	c.State = StateParsed
	return true, nil
}

// stepParsed looks for the CRLF CRLF header terminator, parses the header
// block, honors Expect: 100-continue, and builds the pipeline exactly
// once (spec §4.1's "once PARSED is entered... pipeline is built exactly
// once per request").
func (c *Conn) stepParsed() (bool, *enginerr.Raised) {
	raw := c.input.Bytes()
	idx := bytes.Index(raw, []byte("\r\n\r\n"))
	if idx < 0 {
		if c.Limits.HeaderSize > 0 && int64(len(raw)) > c.Limits.HeaderSize {
			return true, enginerr.Raise(enginerr.ErrLimitExceeded, 413, enginerr.SeverityAbort)
		}
		return false, nil
	}

	block := raw[:idx+2]
	c.input.Next(idx + 4)

	if raised := c.Rx.ParseHeaders(block, c.Limits.HeaderMax, c.Limits.ReceiveBodySize); raised != nil {
		return true, raised
	}

	if c.Rx.ChunkState == rx.ChunkStart {
		c.chunkDec = rx.NewChunkDecoder()
	}

	c.buildContentPipeline()

	if c.Rx.ExpectContinue {
		proto := "HTTP/1.1"
		_, _ = c.Sock.Write([]byte(proto + " 100 Continue\r\n\r\n"))
	}

	if c.Rx.KeepAliveMax > 0 {
		c.KeepAliveCount = c.Rx.KeepAliveMax
	}
	if c.Rx.MustClose {
		c.MustClose = true
		c.KeepAliveCount = 0
	}

	c.State = StateContent
	return true, nil
}

// stepContent drains the declared or chunked body through the content
// pipeline built in stepParsed, following spec §4.2's chunked-vs-content-
// length split; the pipeline (not this function) owns Rx.BytesRead
// accounting once bytes are handed to it (spec §4.3).
func (c *Conn) stepContent() (bool, *enginerr.Raised) {
	if c.chunkDec != nil {
		var out bytes.Buffer
		consumed, raised := c.chunkDec.Decode(c.input.Bytes(), &out)
		c.input.Next(consumed)
		c.feedContent(out.Bytes())
		if raised != nil {
			return true, raised
		}
		if !c.chunkDec.Done() {
			return false, nil
		}
		c.finishContent()
		if !c.contentComplete {
			// the handler stage hasn't drained its queue yet (back-pressure
			// from a downstream stage); wait for the next Pump call instead
			// of advancing past undelivered content.
			return false, nil
		}
		c.Rx.EOF = true
		c.Rx.RemainingContent = 0
		c.State = StateReady
		return true, nil
	}

	need := c.Rx.RemainingContent
	if need < 0 {
		need = 0
	}
	avail := int64(c.input.Len())
	if avail < need {
		if avail > 0 {
			c.Rx.RemainingContent -= avail
			c.feedContent(c.input.Next(int(avail)))
		}
		return false, nil
	}

	if need > 0 {
		c.feedContent(c.input.Next(int(need)))
		c.Rx.RemainingContent = 0
	}
	c.finishContent()
	if !c.contentComplete {
		return false, nil
	}
	c.Rx.EOF = true
	c.State = StateReady
	return true, nil
}

// stepRunning invokes the application handler (spec §1's "handlers supply
// bodies through the pipeline interface"); a nil handler answers a stub
// 404 the way an unmatched route would.
func (c *Conn) stepRunning(handler Handler) (bool, *enginerr.Raised) {
	if handler != nil {
		if err := handler(c); err != nil {
			return true, enginerr.Raise(enginerr.ErrHandlerFailure, 500, enginerr.SeverityClose, err)
		}
	} else if c.Tx.Status == 200 {
		c.Tx.Status = 404
	}

	c.Tx.Finalized = true
	c.Tx.FinalizedOutput = true
	c.State = StateFinalized
	return true, nil
}

// stepFinalized requires both tx.finalized and tx.finalizedConnector
// before advancing (spec §4.1's "FINALIZED implies both... are true").
func (c *Conn) stepFinalized() (bool, *enginerr.Raised) {
	if !c.Tx.Finalized || !c.Tx.FinalizedOutput {
		return false, nil
	}
	c.Tx.FinalizedConnector = true

	c.State = StateComplete

	if c.ShouldPersist() {
		c.KeepAliveCount--
		c.resetForNextRequest()
	}

	return true, nil
}
