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
	"errors"
	"time"
)

// ErrTimeout is returned by WaitForState when the deadline expires before
// state is reached, mirroring httpWait's MPR_ERR_TIMEOUT.
var ErrTimeout = errors.New("conn: wait for state timed out")

// ErrClosed is returned when the socket reports EOF before state is
// reached, mirroring httpWait's MPR_ERR_CANT_READ path.
var ErrClosed = errors.New("conn: socket closed before state reached")

// WaitForState blocks (via the Dispatcher collaborator) until the
// connection reaches at least target, or timeout elapses. A zero timeout
// uses limits.RequestTimeout, matching httpWait's "timeout < 0" default.
// Grounded on rx.c's httpWait: pump any buffered input first, then loop
// servicing queues and waiting on the dispatcher in bounded increments of
// min(inactivityTimeout, remaining).
func (c *Conn) WaitForState(target State, timeout time.Duration, handler Handler) error {
	if c.input.Len() > 0 {
		c.Pump(handler)
	}

	if c.State >= target {
		return nil
	}
	if c.Sock.IsEOF() {
		return ErrClosed
	}

	if timeout <= 0 {
		timeout = c.Limits.RequestTimeout
	}
	inactivity := c.Limits.InactivityTimeout

	deadline := time.Now().Add(timeout)

	for c.State < target {
		if c.sched != nil {
			c.sched.ServiceAll()
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}

		wait := remaining
		if inactivity > 0 && inactivity < wait {
			wait = inactivity
		}

		if c.Dispatcher != nil {
			c.Dispatcher.WaitForEvent(wait)
		} else {
			time.Sleep(wait)
		}

		if c.Sock.HasPendingData() {
			buf := make([]byte, 4096)
			n, _ := c.Sock.Read(buf)
			if n > 0 {
				c.Feed(buf[:n])
				c.Pump(handler)
			}
		}

		if c.Sock.IsEOF() && c.State < target {
			return ErrClosed
		}
	}

	return nil
}
