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

// Scheduler owns one connection's ring of queues awaiting service, grounded
// on queue.c's conn->serviceq sentinel list. A Queue's scheduleNext pointing
// at itself means it is not currently linked into any ring (spec §3).
type Scheduler struct {
	sentinel Queue
}

// NewScheduler returns a Scheduler with its sentinel wired to itself, i.e.
// an empty ring.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.sentinel.scheduleNext = &s.sentinel
	s.sentinel.schedulePrev = &s.sentinel
	return s
}

// schedule splices q in just behind the sentinel (tail of the ring), the
// way httpScheduleQueue appends to conn->serviceq.
func (s *Scheduler) schedule(q *Queue) {
	tail := s.sentinel.schedulePrev

	q.scheduleNext = &s.sentinel
	q.schedulePrev = tail
	tail.scheduleNext = q
	s.sentinel.schedulePrev = q
}

// pop removes and returns the ring's head queue, or nil if the ring is
// empty (sentinel pointing at itself).
func (s *Scheduler) pop() *Queue {
	head := s.sentinel.scheduleNext
	if head == &s.sentinel {
		return nil
	}

	s.sentinel.scheduleNext = head.scheduleNext
	head.scheduleNext.schedulePrev = &s.sentinel

	head.scheduleNext = head
	head.schedulePrev = head

	return head
}

// Empty reports whether the ring currently holds no queues.
func (s *Scheduler) Empty() bool {
	return s.sentinel.scheduleNext == &s.sentinel
}

// ServiceAll drains the ring, running each queue's service callback once and
// rescheduling it at the tail if RunService marked it RESERVICE while it was
// already being serviced (the reentrancy case of httpServiceQueue). It
// returns once the ring empties, which may take several passes if callbacks
// reschedule each other (e.g. a downstream queue waking its upstream once
// room frees up).
func (s *Scheduler) ServiceAll() {
	for {
		q := s.pop()
		if q == nil {
			return
		}

		q.RunService()

		if q.flags.Has(QReservice) {
			q.flags &^= QReservice
			s.schedule(q)
		}
	}
}
