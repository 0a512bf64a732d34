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

// Package pipeline implements the byte-range carrier (Packet), the
// back-pressure queue (Queue), the named processing unit (Stage), and the
// paired incoming/outgoing queue chains (Pipeline) of spec.md §3-4.3,
// grounded on original_source/src/queue.c.
package pipeline

import "net/textproto"

// Flags classifies a Packet the way queue.c's packet flags do.
type Flags uint8

const (
	FlagHeader Flags = 1 << iota
	FlagData
	FlagRange
	FlagEnd
	FlagSolo
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Packet is a byte-range carrier: an optional header snapshot, a content
// buffer, a flag set, and a next link forming the singly-linked chain
// inside a Queue. Invariant (spec §3): length equals the readable span of
// buf plus entityLength; an END packet has length 0.
type Packet struct {
	Flags   Flags
	Header  textproto.MIMEHeader
	buf     []byte
	pos     int
	entity  int64
	Next    *Packet
}

// NewDataPacket wraps buf as a DATA packet.
func NewDataPacket(buf []byte) *Packet {
	return &Packet{Flags: FlagData, buf: buf}
}

// NewHeaderPacket carries a parsed header snapshot with no content bytes.
func NewHeaderPacket(h textproto.MIMEHeader) *Packet {
	return &Packet{Flags: FlagHeader, Header: h}
}

// NewEndPacket is the zero-length stream terminator; it is never reordered
// (spec §5) and always has Len() == 0.
func NewEndPacket() *Packet {
	return &Packet{Flags: FlagEnd}
}

// NewRangePacket carries a byte-range-only marker (used by the range filter
// to delimit multipart/byteranges boundaries) with an accounted entity
// length but no resident buffer.
func NewRangePacket(entityLength int64) *Packet {
	return &Packet{Flags: FlagRange, entity: entityLength}
}

// Len returns the packet's accounted length: the readable span of its
// content buffer plus any pre-accounted entity length. An END packet always
// reports 0.
func (p *Packet) Len() int64 {
	if p.Flags.Has(FlagEnd) {
		return 0
	}
	return int64(len(p.buf)-p.pos) + p.entity
}

// Bytes returns the unread portion of the packet's content buffer.
func (p *Packet) Bytes() []byte {
	return p.buf[p.pos:]
}

// Drain consumes up to n bytes from the front of the packet's content
// buffer, returning what was actually consumed.
func (p *Packet) Drain(n int) []byte {
	avail := len(p.buf) - p.pos
	if n > avail {
		n = avail
	}
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b
}

// Empty reports whether the packet's content buffer has been fully drained
// and it carries no pre-accounted entity length.
func (p *Packet) Empty() bool {
	return p.pos >= len(p.buf) && p.entity == 0
}

// Append appends more bytes to the packet's content buffer, used by
// writeBlock (spec §4.3) to fill a packet up to its queue's packetSize
// before allocating a fresh one.
func (p *Packet) Append(b []byte) {
	p.buf = append(p.buf, b...)
}

// Split removes and returns a new trailing Packet holding the last
// (Len()-at) bytes of p's buffer, used by willNextQueueAcceptPacket's
// resizePacket step (spec §4.3) when a packet is larger than downstream can
// accept right now.
func (p *Packet) Split(at int64) *Packet {
	if at < 0 || at >= p.Len() {
		return nil
	}

	avail := int64(len(p.buf) - p.pos)
	if at >= avail {
		// Split only touches the pre-accounted entity tail; nothing to move.
		rest := &Packet{Flags: p.Flags &^ FlagSolo, entity: p.entity - (at - avail)}
		p.entity = at - avail
		return rest
	}

	cut := p.pos + int(at)
	rest := &Packet{Flags: p.Flags &^ FlagSolo, buf: p.buf[cut:], entity: p.entity}
	p.buf = p.buf[:cut]
	p.entity = 0
	return rest
}
