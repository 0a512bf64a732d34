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

package service

import (
	"time"

	"github.com/nabbar/httpengine/conn"
	"github.com/nabbar/httpengine/enginerr"
)

// ensureTimer starts the once-a-second background timer if it is not
// already running, mirroring httpAddConn's "if (!http->timer) { create }"
// guard. The CompareAndSwap makes the guard itself race-free: concurrent
// AddConn calls from different connection goroutines can only ever have
// one of them win the false->true swap and spawn runTimer.
func (s *Service) ensureTimer() {
	if !s.timerOn.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	s.timerStop = make(chan struct{})
	stop := s.timerStop
	s.mu.Unlock()

	go s.runTimer(stop)
}

func (s *Service) runTimer(stop chan struct{}) {
	ticker := time.NewTicker(TimerPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.tick() {
				s.timerOn.Store(false)
				return
			}
		}
	}
}

// tick is one firing of httpTimer: refresh the date cache, scan every
// connection for the three timeout classes, and report whether any
// connection is still active (false self-deregisters the timer).
func (s *Service) tick() bool {
	s.updateCurrentDate()
	now := s.Now()

	s.mu.Lock()
	entries := append([]*Entry(nil), s.connections...)
	s.mu.Unlock()

	active := 0
	for _, e := range entries {
		c := e.Conn
		if e.TimeoutFired {
			active++
			continue
		}

		limits := c.Limits
		expired := false

		if c.Endpoint && c.State > conn.StateBegin && c.State < conn.StateParsed &&
			now.Sub(c.Started) > limits.RequestParseTimeout {
			expired = true
		} else if now.Sub(c.LastActivity) > limits.InactivityTimeout ||
			now.Sub(c.Started) > limits.RequestTimeout {
			expired = true
		}

		if expired {
			e.TimeoutFired = true
			c.Error = true
			c.MustClose = true
			c.LastRaised = enginerr.Raise(enginerr.ErrTimeout, 408, enginerr.SeverityAbort)
			s.errs.Add(c.LastRaised)
			if s.log != nil {
				s.log.Warning("connection timed out: %s", nil, c.State.String())
			}
		}
		active++
	}

	return active > 0
}

// Idle reports whether every registered connection sits at BEGIN, the
// precondition isIdle uses before allowing process shutdown/GC (spec
// §4.5's "Idle check").
func (s *Service) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, e := range s.connections {
		if e.Conn.State != conn.StateBegin {
			if s.lastIdleTrace.Before(now.Truncate(time.Second)) {
				s.lastIdleTrace = now
				if s.log != nil {
					s.log.Info("connection still active: %s", nil, e.Conn.State.String())
				}
			}
			return false
		}
	}
	return true
}

// Stop tears down the background timer, e.g. during process shutdown.
func (s *Service) Stop() {
	s.mu.Lock()
	stop := s.timerStop
	s.mu.Unlock()

	s.timerOn.Store(false)
	if stop != nil {
		close(stop)
	}
}
