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

// Package conn is the per-connection state machine of spec.md §3/§4.1,
// grounded on original_source/src/rx.c's httpPumpRequest/httpWait: Conn
// owns the current Rx, Tx, and Pipeline, and drives them monotonically
// from BEGIN to COMPLETE.
package conn

// State is one step of the BEGIN..COMPLETE state machine (spec §4.1).
// States are declared in their natural ordering so "state is
// non-decreasing" (spec §8 property 4) is a plain integer comparison.
type State uint8

const (
	StateBegin State = iota
	StateConnected
	StateFirst
	StateParsed
	StateContent
	StateReady
	StateRunning
	StateFinalized
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateBegin:
		return "BEGIN"
	case StateConnected:
		return "CONNECTED"
	case StateFirst:
		return "FIRST"
	case StateParsed:
		return "PARSED"
	case StateContent:
		return "CONTENT"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateFinalized:
		return "FINALIZED"
	case StateComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}
