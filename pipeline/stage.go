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

// StageFlags classifies what role a Stage plays in a pipeline, mirroring
// queue.c's HTTP_STAGE_HANDLER/FILTER/CONNECTOR constants.
type StageFlags uint8

const (
	StageHandler StageFlags = 1 << iota
	StageFilter
	StageConnector
)

// Stage is a named processing unit sitting between an incoming and an
// outgoing Queue pair, grounded on queue.c's HttpStage. A connector (the
// innermost stage, talking to the network) has no nextQ/prevQ on one side;
// a filter sits in the middle of the chain; a handler terminates the
// incoming side and originates the outgoing side.
type Stage struct {
	Name  string
	Flags StageFlags

	Open    func(conn interface{}) error
	Close   func(conn interface{})
	Writable func(q *Queue) bool

	IncomingData    ServiceFunc
	OutgoingData    ServiceFunc
	IncomingService ServiceFunc
	OutgoingService ServiceFunc
}

func (s *Stage) Is(flag StageFlags) bool { return s.Flags&flag != 0 }
