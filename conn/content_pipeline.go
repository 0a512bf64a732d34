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

import "github.com/nabbar/httpengine/pipeline"

// buildContentPipeline wires the two-stage incoming chain CONTENT drains
// through (spec §4.3): a decode stage that holds each packet until the
// handler stage's queue has room (the back-pressure check queue.c calls
// willNextQueueAcceptPacket), and a handler stage that folds accepted
// packets into Rx's byte accounting. Built exactly once per request, the
// way stepParsed's doc promises.
func (c *Conn) buildContentPipeline() {
	bufSize := c.Limits.ChunkSize
	if bufSize <= 0 {
		bufSize = c.Limits.BufferSize
	}
	if bufSize <= 0 {
		bufSize = 4096
	}

	handler := &pipeline.Stage{Name: "content.handler", Flags: pipeline.StageHandler}
	handler.IncomingService = func(q *pipeline.Queue) {
		for {
			pkt := q.RemoveHead()
			if pkt == nil {
				return
			}
			if pkt.Flags.Has(pipeline.FlagEnd) {
				c.contentComplete = true
				continue
			}
			c.Rx.BytesRead += pkt.Len()
		}
	}

	decode := &pipeline.Stage{Name: "content.decode", Flags: pipeline.StageFilter}
	decode.IncomingService = func(q *pipeline.Queue) {
		next := q.NextQ()
		for {
			pkt := q.Peek()
			if pkt == nil {
				return
			}
			if !pipeline.WillNextQueueAcceptPacket(next, pkt) {
				return
			}
			q.RemoveHead()
			next.Append(pkt)
			next.Schedule()
		}
	}

	c.pipe = pipeline.New(c.sched, bufSize, []*pipeline.Stage{decode, handler})
}

// feedContent hands a chunk of decoded body bytes to the content pipeline's
// first stage and drains the scheduler's ring, the way httpPumpRequest
// drives httpServiceQueue after every httpPutForService.
func (c *Conn) feedContent(b []byte) {
	if len(b) == 0 {
		return
	}
	c.pipe.PutForService(0, pipeline.NewDataPacket(append([]byte(nil), b...)))
	c.pipe.Scheduler.ServiceAll()
}

// finishContent marks the incoming side of the pipeline ended and drains it,
// the way an END packet propagates through queue.c's chain.
func (c *Conn) finishContent() {
	c.pipe.PutForService(0, pipeline.NewEndPacket())
	c.pipe.Scheduler.ServiceAll()
}
