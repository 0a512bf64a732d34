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

import "time"

// MatchEtag mirrors httpMatchEtag: with no If-Match/If-None-Match etags
// recorded, everything matches. Otherwise a hit flips the verdict
// depending on whether this was an If-Match (want a hit) or
// If-None-Match (want a miss) comparison.
func (rx *Rx) MatchEtag(requestedEtag string) bool {
	if len(rx.Etags) == 0 {
		return true
	}
	if requestedEtag == "" {
		return false
	}
	for _, tag := range rx.Etags {
		if tag == requestedEtag {
			return !rx.IfMatch
		}
	}
	return rx.IfMatch
}

// MatchModified mirrors httpMatchModified: with no If-Modified-Since or
// If-Unmodified-Since supplied, everything matches. IfMatch here doubles
// as the "this was an If-Unmodified-Since header" flag exactly as rx.c
// reuses ifModified for both If-Match and If-Modified-Since parsing.
func (rx *Rx) MatchModified(modTime time.Time) bool {
	if rx.Since.IsZero() {
		return true
	}
	if rx.IfMatch {
		return !modTime.After(rx.Since)
	}
	return modTime.After(rx.Since)
}

// ContentNotModified combines MatchModified and MatchEtag the way
// httpContentNotModified does for a GET/HEAD against a cached entity.
func (rx *Rx) ContentNotModified(modTime time.Time, etag string) bool {
	return rx.MatchModified(modTime) && rx.MatchEtag(etag)
}
