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
	"time"

	"github.com/nabbar/httpengine/enginerr"
)

const maxKeepAlive = 100000

// ParseRequestLine parses "METHOD URI HTTP/1.x" out of line, the way
// parseRequestLine consumes getToken(conn,0)/getToken(conn,0)/getToken(conn,"\r\n"),
// validating the method, a non-empty URI within uriSize, and the protocol
// token.
func (rx *Rx) ParseRequestLine(line []byte, uriSizeLimit int64) *enginerr.Raised {
	rx.feed(line)

	method := strings.ToUpper(rx.nextToken(""))
	rx.OriginalMethod = method
	rx.Method = method

	uri := rx.nextToken("")
	if uri == "" {
		return enginerr.Raise(enginerr.ErrMalformed, 400, enginerr.SeverityAbort)
	}
	if uriSizeLimit > 0 && int64(len(uri)) >= uriSizeLimit {
		return enginerr.Raise(enginerr.ErrLimitExceeded, 414, enginerr.SeverityAbort)
	}

	protocol := strings.ToUpper(rx.nextToken("\r\n"))
	switch protocol {
	case "HTTP/1.0":
		rx.HTTP10 = true
		rx.Protocol = protocol
		if method == "POST" || method == "PUT" {
			rx.RemainingContent = -1
		}
	case "HTTP/1.1":
		rx.Protocol = protocol
	default:
		rx.Protocol = "HTTP/1.1"
		return enginerr.Raise(enginerr.ErrProtocolMismatch, 406, enginerr.SeverityAbort)
	}

	rx.URI = uri
	return nil
}

// ParseStatusLine parses "HTTP/1.x CODE Message" the way parseResponseLine
// does, for engines acting as an upstream client (spec §1's "may drive
// either a server-side or client-side connection").
func (rx *Rx) ParseStatusLine(line []byte) *enginerr.Raised {
	rx.feed(line)

	protocol := strings.ToUpper(rx.nextToken(""))
	switch protocol {
	case "HTTP/1.0":
		rx.HTTP10 = true
		rx.Protocol = protocol
	case "HTTP/1.1":
		rx.Protocol = protocol
	default:
		return enginerr.Raise(enginerr.ErrProtocolMismatch, 406, enginerr.SeverityAbort)
	}

	status := rx.nextToken("")
	if status == "" {
		return enginerr.Raise(enginerr.ErrMalformed, 400, enginerr.SeverityAbort)
	}
	n, err := strconv.Atoi(status)
	if err != nil {
		return enginerr.Raise(enginerr.ErrMalformed, 400, enginerr.SeverityAbort, err)
	}
	rx.Status = n
	rx.StatusMessage = rx.nextToken("\r\n")
	return nil
}

// ParseHeaders walks block token by token the way parseHeaders walks
// content up to the blank line, dispatching on the lower-cased first
// letter of each header key exactly as the switch in rx.c does, folding
// repeated keys with ", " and rejecting keys containing any of "%<>/\\".
func (rx *Rx) ParseHeaders(block []byte, headerMax int64, receiveBodySize int64) *enginerr.Raised {
	rx.feed(block)

	count := int64(0)
	for {
		if len(rx.buf[rx.pos:]) >= 2 && rx.buf[rx.pos] == '\r' && rx.buf[rx.pos+1] == '\n' {
			break
		}
		if len(rx.buf[rx.pos:]) == 0 {
			break
		}
		if headerMax > 0 && count >= headerMax {
			return enginerr.Raise(enginerr.ErrLimitExceeded, 400, enginerr.SeverityAbort)
		}
		count++

		key := rx.nextToken(":")
		if key == "" {
			return enginerr.Raise(enginerr.ErrMalformed, 400, enginerr.SeverityAbort)
		}
		if strings.ContainsAny(key, "%<>/\\") {
			return enginerr.Raise(enginerr.ErrMalformed, 400, enginerr.SeverityAbort)
		}

		value := strings.TrimLeft(rx.nextToken("\r\n"), " \t")

		if old := rx.Headers.Get(key); old != "" {
			rx.Headers.Set(key, old+", "+value)
		} else {
			rx.Headers.Set(key, value)
		}

		if raised := rx.dispatchHeader(key, value, receiveBodySize); raised != nil {
			return raised
		}
	}

	if rx.Form && rx.Length >= 0 && receiveBodySize > 0 && rx.Length >= receiveBodySize {
		return enginerr.Raise(enginerr.ErrLimitExceeded, 413, enginerr.SeverityClose)
	}
	if rx.HTTP10 && !rx.KeepAliveHeader {
		rx.KeepAliveMax = 0
	}
	return nil
}

// dispatchHeader is the first-letter switch of parseHeaders.
func (rx *Rx) dispatchHeader(key, value string, receiveBodySize int64) *enginerr.Raised {
	lower := strings.ToLower(key)
	if lower == "" {
		return nil
	}

	switch lower[0] {
	case 'c':
		switch lower {
		case "connection":
			rx.Connection = value
			switch strings.ToUpper(value) {
			case "KEEP-ALIVE":
				rx.KeepAliveHeader = true
			case "CLOSE":
				rx.MustClose = true
			}
		case "content-length":
			if rx.Length >= 0 {
				return enginerr.Raise(enginerr.ErrMalformed, 400, enginerr.SeverityClose)
			}
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 0 {
				return enginerr.Raise(enginerr.ErrMalformed, 400, enginerr.SeverityAbort)
			}
			if receiveBodySize > 0 && n >= receiveBodySize {
				return enginerr.Raise(enginerr.ErrLimitExceeded, 413, enginerr.SeverityAbort)
			}
			rx.Length = n
			rx.RemainingContent = n
		case "content-range":
			// Request-body content range is parsed by the upload handler
			// that owns the destination entity; Rx only records the raw
			// header text via Headers above.
		case "content-type":
			rx.MimeType = value
			if rx.Method == "POST" || rx.Method == "PUT" {
				rx.Form = strings.Contains(value, "application/x-www-form-urlencoded")
				rx.Upload = strings.Contains(value, "multipart/form-data")
			}
		case "cookie":
			if rx.Cookie != "" {
				rx.Cookie += "; " + value
			} else {
				rx.Cookie = value
			}
		}

	case 'e':
		if lower == "expect" {
			if !rx.HTTP10 {
				if !strings.EqualFold(value, "100-continue") {
					return enginerr.Raise(enginerr.ErrProtocolMismatch, 417, enginerr.SeverityNone)
				}
				rx.ExpectContinue = true
			}
		}

	case 'h':
		if lower == "host" {
			rx.Host = value
		}

	case 'i':
		switch lower {
		case "if-modified-since", "if-unmodified-since":
			if v := strings.SplitN(value, ";", 2)[0]; v != "" {
				if t, err := time.Parse(time.RFC1123, v); err == nil {
					rx.Since = t
					rx.IfMatch = lower[3] == 'm'
				}
			}
		case "if-match", "if-none-match":
			rx.IfMatch = lower[3] == 'm'
			addEtags(rx, value)
		case "if-range":
			rx.IfMatch = true
			addEtags(rx, value)
		}

	case 'k':
		if lower == "keep-alive" {
			if idx := strings.Index(value, "max="); idx >= 0 {
				if n, err := strconv.Atoi(strings.TrimSpace(value[idx+4:])); err == nil {
					if n < 0 || n > maxKeepAlive {
						n = 0
					}
					rx.KeepAliveMax = n
				}
			}
		}

	case 'r':
		if lower == "range" {
			rng, ok := parseRangeHeader(value)
			if !ok {
				return enginerr.Raise(enginerr.ErrMalformed, 416, enginerr.SeverityClose)
			}
			rx.InputRange = rng
		} else if lower == "referer" {
			rx.Referrer = value
		}

	case 't':
		if lower == "transfer-encoding" && strings.EqualFold(value, "chunked") {
			rx.ChunkState = ChunkStart
			rx.RemainingContent = -1
		}

	case 'o':
		if lower == "origin" {
			rx.Origin = value
		}

	case 'u':
		switch lower {
		case "upgrade":
			rx.Upgrade = value
		case "user-agent":
			rx.UserAgent = value
		}

	case 'w':
		if lower == "www-authenticate" {
			fields := strings.SplitN(value, " ", 2)
			rx.AuthType = strings.ToLower(fields[0])
			if len(fields) > 1 {
				rx.AuthDetail = fields[1]
			}
		}
	}
	return nil
}

func addEtags(rx *Rx, value string) {
	value = strings.SplitN(value, ";", 2)[0]
	for _, w := range strings.FieldsFunc(value, func(r rune) bool { return r == ' ' || r == ',' }) {
		if w != "" {
			rx.Etags = append(rx.Etags, w)
		}
	}
}
