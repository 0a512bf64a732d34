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

// Direction is which way a Queue moves bytes through the pipeline.
type Direction uint8

const (
	Upstream Direction = iota
	Downstream
)

// QFlags is the queue flag set of spec.md §3.
type QFlags uint32

const (
	QDisabled QFlags = 1 << iota
	QSuspended
	QFull
	QServiced
	QReservice
	QOpen
)

func (f QFlags) Has(flag QFlags) bool { return f&flag != 0 }

// ServiceFunc is a Stage's incomingService/outgoingService callback: it
// must be non-blocking (spec §5), draining available input or disabling
// itself before returning.
type ServiceFunc func(q *Queue)

// Queue is the doubly-linked buffer between two stages in one direction,
// grounded on httpInitQueue/httpAppendQueue/httpServiceQueue in queue.c.
type Queue struct {
	Name       string
	Direction  Direction
	Stage      *Stage
	PacketSize int64
	Max        int64
	Low        int64

	first, last *Packet
	count       int64
	flags       QFlags

	prevQ, nextQ *Queue

	scheduleNext, schedulePrev *Queue
	servicing                  bool

	service ServiceFunc
	sched   *Scheduler
}

// NewQueue builds a queue sized the way httpInitQueue does: packetSize and
// max both default to stageBufferSize, low is 5% of max.
func NewQueue(name string, dir Direction, sched *Scheduler, bufferSize int64, svc ServiceFunc) *Queue {
	q := &Queue{
		Name:       name,
		Direction:  dir,
		PacketSize: bufferSize,
		Max:        bufferSize,
		Low:        bufferSize / 20,
		flags:      QOpen,
		service:    svc,
		sched:      sched,
	}
	q.scheduleNext = q
	q.schedulePrev = q
	return q
}

// Count is the total bytes currently enqueued.
func (q *Queue) Count() int64 { return q.count }

func (q *Queue) Flags() QFlags { return q.flags }

func (q *Queue) Disable() { q.flags |= QDisabled }

func (q *Queue) Enable() { q.flags &^= QDisabled }

func (q *Queue) Disabled() bool { return q.flags.Has(QDisabled) }

// IsScheduled reports whether the queue is currently linked into its
// scheduler's ring -- spec §3's invariant "scheduleNext == self means the
// queue is NOT scheduled".
func (q *Queue) IsScheduled() bool { return q.scheduleNext != q }

// Append adds a packet to the tail of the queue's chain and updates count,
// mirroring httpAppendQueue / httpPutForService.
func (q *Queue) Append(p *Packet) {
	if q.first == nil {
		q.first = p
		q.last = p
	} else {
		q.last.Next = p
		q.last = p
	}
	q.count += p.Len()

	if q.count >= q.Max {
		q.flags |= QFull
	}
}

// RemoveHead pops and returns the first packet in the chain, or nil if
// empty, mirroring httpGetPacket.
func (q *Queue) RemoveHead() *Packet {
	p := q.first
	if p == nil {
		return nil
	}

	q.first = p.Next
	if q.first == nil {
		q.last = nil
	}
	p.Next = nil

	q.count -= p.Len()
	if q.count < 0 {
		q.count = 0
	}

	if q.count < q.Low {
		q.flags &^= QFull
	}

	return p
}

// Peek returns the head packet without removing it.
func (q *Queue) Peek() *Packet { return q.first }

// Empty reports whether the chain holds no packets.
func (q *Queue) Empty() bool { return q.first == nil }

// Schedule splices q into its scheduler's ring if it is not already
// scheduled, mirroring httpScheduleQueue's guard
// "if (q->scheduleNext == q)".
func (q *Queue) Schedule() {
	if q.sched == nil || q.IsScheduled() {
		return
	}
	q.sched.schedule(q)
}

// RunService invokes the queue's service callback under the
// servicing/RESERVICE reentrancy guard of httpServiceQueue: a queue that
// gets rescheduled while it is being serviced is marked RESERVICE instead
// of re-entering, and the caller (Scheduler.ServiceAll) reschedules it once
// the first call returns.
func (q *Queue) RunService() {
	if q.service == nil {
		return
	}

	if q.servicing {
		q.flags |= QReservice
		return
	}

	q.servicing = true
	q.flags |= QServiced
	q.service(q)
	q.servicing = false
	q.flags &^= QServiced
}

// link chains q between prev and q.nextQ == next inside the pipeline
// (separate from the scheduling ring).
func (q *Queue) link(prev, next *Queue) {
	q.prevQ = prev
	q.nextQ = next
	if prev != nil {
		prev.nextQ = q
	}
	if next != nil {
		next.prevQ = q
	}
}

// NextQ / PrevQ walk the pipeline chain (not the scheduling ring).
func (q *Queue) NextQ() *Queue { return q.nextQ }
func (q *Queue) PrevQ() *Queue { return q.prevQ }
