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

package pipeline

// Pipeline is the paired incoming/outgoing queue chain built once per
// request (spec §4.1/§4.3): each stage contributes one incoming queue
// (pointing toward the handler) and one outgoing queue (pointing toward the
// connector), the two chains running in opposite directions through the
// same ordered stage list.
type Pipeline struct {
	Scheduler *Scheduler

	stages []*Stage

	incoming []*Queue
	outgoing []*Queue
}

// New builds a Pipeline over stages (ordered connector-first, the way
// queue.c walks conn->http->stages), allocating one incoming and one
// outgoing Queue per stage and linking each chain in sequence.
func New(sched *Scheduler, bufferSize int64, stages []*Stage) *Pipeline {
	p := &Pipeline{Scheduler: sched, stages: stages}

	p.incoming = make([]*Queue, len(stages))
	p.outgoing = make([]*Queue, len(stages))

	for i, st := range stages {
		in := NewQueue(st.Name+".in", Upstream, sched, bufferSize, st.IncomingService)
		in.Stage = st
		p.incoming[i] = in

		out := NewQueue(st.Name+".out", Downstream, sched, bufferSize, st.OutgoingService)
		out.Stage = st
		p.outgoing[i] = out
	}

	for i := 1; i < len(stages); i++ {
		p.incoming[i-1].link(p.incoming[i-1].prevQ, p.incoming[i])
	}
	for i := 1; i < len(stages); i++ {
		p.outgoing[i].link(p.outgoing[i-1], p.outgoing[i].nextQ)
	}

	return p
}

// Incoming returns the incoming (toward-handler) queue for stage index i.
func (p *Pipeline) Incoming(i int) *Queue { return p.incoming[i] }

// Outgoing returns the outgoing (toward-connector) queue for stage index i.
func (p *Pipeline) Outgoing(i int) *Queue { return p.outgoing[i] }

// PutForService appends data to the incoming queue of stage i and schedules
// it, following httpPutForService's put-then-schedule pairing.
func (p *Pipeline) PutForService(i int, pkt *Packet) {
	q := p.incoming[i]
	q.Append(pkt)
	q.Schedule()
}

// WillNextQueueAcceptPacket reports whether the next queue downstream (in
// pkt's direction) has room for pkt without exceeding its Max, following
// spec §4.3's back-pressure check. A nil next queue (end of chain) always
// accepts.
func WillNextQueueAcceptPacket(next *Queue, pkt *Packet) bool {
	if next == nil {
		return true
	}
	if next.Disabled() {
		return false
	}
	return next.count+pkt.Len() <= next.Max
}

// WriteBlock appends data to q's tail packet when possible (coalescing
// below PacketSize) instead of always allocating a new Packet, mirroring
// queue.c's writeBlock. It returns the number of bytes actually accepted;
// the caller must stop and wait for service if it is less than len(b).
func WriteBlock(q *Queue, b []byte) int {
	if q.last != nil && !q.last.Flags.Has(FlagEnd) && !q.last.Flags.Has(FlagSolo) {
		room := q.PacketSize - int64(len(q.last.buf))
		if room > 0 {
			n := int64(len(b))
			if n > room {
				n = room
			}
			q.last.Append(b[:n])
			q.count += n
			if q.count >= q.Max {
				q.flags |= QFull
			}
			return int(n)
		}
	}

	if q.count >= q.Max {
		q.flags |= QFull
		return 0
	}

	pkt := NewDataPacket(append([]byte(nil), b...))
	q.Append(pkt)
	return len(b)
}
