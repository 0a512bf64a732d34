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

// Package rx is the per-request inbound snapshot of spec.md §3 ("Rx"): the
// request/status line, the header map, content-length/chunk bookkeeping and
// conditional-request state, grounded on original_source/src/rx.c's
// parseRequestLine/parseHeaders/parseRange/httpMatchEtag/httpMatchModified.
package rx

import (
	"net/textproto"
	"time"
)

// ChunkState is the transfer-encoding decoder state of spec.md §4.2.
type ChunkState uint8

const (
	ChunkUnchunked ChunkState = iota
	ChunkStart
	ChunkData
	ChunkEOF
)

// Rx is created at Conn state BEGIN and discarded at COMPLETE (spec §3).
type Rx struct {
	Method         string
	OriginalMethod string
	URI            string
	PathInfo       string
	ScriptName     string
	Protocol       string
	HTTP10         bool

	Headers textproto.MIMEHeader

	Length           int64
	RemainingContent int64
	BytesRead        int64
	ChunkState       ChunkState

	EOF bool

	Form      bool
	Upload    bool
	OwnParams bool
	MimeType  string

	Host       string
	Cookie     string
	UserAgent  string
	Referrer   string
	Origin     string
	AuthType   string
	AuthDetail string

	Connection      string
	ExpectContinue  bool
	Upgrade         string
	MustClose       bool
	KeepAliveHeader bool
	KeepAliveMax    int

	InputRange *Range

	Etags    []string
	IfMatch  bool
	Since    time.Time

	Status        int
	StatusMessage string

	buf  []byte
	pos  int
}

// New returns a zeroed Rx with an empty header map, the state of a
// freshly-entered BEGIN connection.
func New() *Rx {
	return &Rx{Headers: textproto.MIMEHeader{}, Length: -1}
}

// Reset returns rx to its post-New state for reuse across keep-alive
// requests, avoiding a fresh allocation per request the way httpCreateRx's
// paired httpDestroyRx/httpCreateRx cycle effectively does for a
// connection-pooled implementation.
func (rx *Rx) Reset() {
	*rx = *New()
}

// feed installs the header-block bytes the parser will tokenize via
// nextToken, mirroring getToken's use of conn->input->content.
func (rx *Rx) feed(b []byte) {
	rx.buf = b
	rx.pos = 0
}

// nextToken implements getToken: skip leading spaces/tabs, then scan for
// delim (a literal substring, or whitespace when delim is empty) and
// advance past it, returning the token found (possibly empty, meaning the
// delimiter was never found).
func (rx *Rx) nextToken(delim string) string {
	for rx.pos < len(rx.buf) && (rx.buf[rx.pos] == ' ' || rx.buf[rx.pos] == '\t') {
		rx.pos++
	}
	start := rx.pos

	if delim == "" {
		end := start
		for end < len(rx.buf) && rx.buf[end] != ' ' && rx.buf[end] != '\t' {
			end++
		}
		token := string(rx.buf[start:end])
		for end < len(rx.buf) && (rx.buf[end] == ' ' || rx.buf[end] == '\t') {
			end++
		}
		rx.pos = end
		return token
	}

	rest := rx.buf[start:]
	idx := indexString(rest, delim)
	if idx < 0 {
		rx.pos = len(rx.buf)
		return string(rest)
	}
	rx.pos = start + idx + len(delim)
	return string(rest[:idx])
}

func indexString(b []byte, s string) int {
	n := len(s)
	if n == 0 {
		return -1
	}
	for i := 0; i+n <= len(b); i++ {
		if string(b[i:i+n]) == s {
			return i
		}
	}
	return -1
}
