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

package rx

import (
	"bytes"
	"strconv"

	"github.com/nabbar/httpengine/enginerr"
)

// ChunkDecoder implements the transfer-encoding state machine of spec.md
// §4.2: START expects "HEX-SIZE [;extension] CRLF", DATA consumes exactly
// size bytes then a trailing CRLF, and a zero-size chunk moves to EOF after
// consuming trailer lines and the final blank line. It is driven
// incrementally, a packet's worth of bytes at a time, the way rx.c sets
// rx->chunkState and leaves remainingContent at MAXINT until the last
// chunk clears it to 0.
type ChunkDecoder struct {
	state     ChunkState
	remaining int64
}

// NewChunkDecoder starts a decoder in the START state.
func NewChunkDecoder() *ChunkDecoder {
	return &ChunkDecoder{state: ChunkStart}
}

func (c *ChunkDecoder) State() ChunkState { return c.state }

// Decode consumes as much of buf as forms complete chunk framing,
// appending decoded payload bytes to out and returning the number of input
// bytes consumed. It stops (without erroring) when buf ends mid-chunk-line
// or mid-payload, awaiting more input from the caller's next read.
func (c *ChunkDecoder) Decode(buf []byte, out *bytes.Buffer) (consumed int, raised *enginerr.Raised) {
	pos := 0

	for pos < len(buf) && c.state != ChunkEOF {
		switch c.state {
		case ChunkStart:
			nl := bytes.IndexByte(buf[pos:], '\n')
			if nl < 0 {
				return pos, nil
			}
			line := buf[pos : pos+nl]
			line = bytes.TrimRight(line, "\r")
			pos += nl + 1

			sizeStr := line
			if i := bytes.IndexByte(line, ';'); i >= 0 {
				sizeStr = line[:i]
			}
			size, err := strconv.ParseInt(string(bytes.TrimSpace(sizeStr)), 16, 64)
			if err != nil || size < 0 {
				return pos, enginerr.Raise(enginerr.ErrMalformed, 400, enginerr.SeverityAbort, err)
			}

			if size == 0 {
				c.state = ChunkEOF
				c.remaining = 0
				continue
			}
			c.remaining = size
			c.state = ChunkData

		case ChunkData:
			avail := len(buf) - pos
			want := c.remaining
			if int64(avail) < want {
				out.Write(buf[pos:])
				c.remaining -= int64(avail)
				return len(buf), nil
			}

			out.Write(buf[pos : pos+int(want)])
			pos += int(want)
			c.remaining = 0

			// Consume the trailing CRLF after the chunk's data.
			if pos+1 < len(buf) && buf[pos] == '\r' && buf[pos+1] == '\n' {
				pos += 2
			} else if pos < len(buf) && buf[pos] == '\n' {
				pos++
			} else {
				return pos, nil
			}
			c.state = ChunkStart
		}
	}

	if c.state == ChunkEOF {
		// Consume trailer header lines up to and including the final
		// blank line; a trailer section is rare in practice but still
		// framed the same way as the header block.
		for pos < len(buf) {
			nl := bytes.IndexByte(buf[pos:], '\n')
			if nl < 0 {
				return pos, nil
			}
			line := bytes.TrimRight(buf[pos:pos+nl], "\r")
			pos += nl + 1
			if len(line) == 0 {
				break
			}
		}
	}

	return pos, nil
}

// Done reports whether the decoder has consumed the final chunk and
// trailer, the point at which Rx.EOF should be set and RemainingContent
// becomes 0 (spec §4.2).
func (c *ChunkDecoder) Done() bool { return c.state == ChunkEOF }
