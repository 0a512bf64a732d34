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
	"strconv"
	"strings"
)

// Range is one "start-end" span of a Range/Content-Range header, grounded
// on rx.c's HttpRange and parseRange. Start/End of -1 means "not given";
// per the spec's math convenience, End is one byte beyond the last byte
// requested.
type Range struct {
	Start int64
	End   int64
	Len   int64
	Next  *Range
}

// parseRangeHeader parses "bytes=n1-n2,n3-n4,..." into a linked Range list,
// mirroring parseRange byte for byte: strip the "bytes=" prefix, split on
// commas, interpret a leading '-' as "no start", then validate the whole
// chain (ascending, non-overlapping, at most one open-ended trailing
// range).
func parseRangeHeader(value string) (*Range, bool) {
	value = strings.TrimSpace(value)
	if eq := strings.IndexByte(value, '='); eq >= 0 {
		value = value[eq+1:]
	}
	if value == "" {
		return nil, false
	}

	var head, last *Range
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, false
		}

		r := &Range{Start: -1, End: -1}

		dash := strings.IndexByte(tok, '-')
		if dash < 0 {
			return nil, false
		}

		if dash > 0 {
			n, err := strconv.ParseInt(tok[:dash], 10, 64)
			if err != nil {
				return nil, false
			}
			r.Start = n
		}

		if dash+1 < len(tok) {
			n, err := strconv.ParseInt(tok[dash+1:], 10, 64)
			if err != nil {
				return nil, false
			}
			r.End = n + 1
		}

		if r.Start >= 0 && r.End >= 0 {
			r.Len = r.End - r.Start
		}

		if head == nil {
			head = r
		} else {
			last.Next = r
		}
		last = r
	}

	for r := head; r != nil; r = r.Next {
		if r.End != -1 && r.Start >= r.End {
			return nil, false
		}
		if r.Start < 0 && r.End < 0 {
			return nil, false
		}
		next := r.Next
		if r.Start < 0 && next != nil {
			return nil, false
		}
		if next != nil {
			if r.End < 0 {
				return nil, false
			}
			if next.Start >= 0 && r.End > next.Start {
				return nil, false
			}
		}
	}

	return head, true
}

// Resolve turns a Range with an open start or end into absolute byte
// offsets against an entity of the given length, the way a connector
// resolves outputRanges just before transmission.
func (r *Range) Resolve(entityLength int64) (start, end int64) {
	switch {
	case r.Start < 0:
		start = entityLength - r.End
		if start < 0 {
			start = 0
		}
		end = entityLength
	case r.End < 0:
		start = r.Start
		end = entityLength
	default:
		start = r.Start
		end = r.End
		if end > entityLength {
			end = entityLength
		}
	}
	return start, end
}
