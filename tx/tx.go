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

// Package tx is the per-request outbound snapshot of spec.md §3 ("Tx"),
// grounded on original_source/src/rx.c's HttpTx fields (status, headers,
// outputRanges, chunkSize, the three finalized flags, bytesWritten,
// writeBlocked) and on queue.c's writeBlocked usage in the connector stage.
package tx

import (
	"net/textproto"

	"github.com/nabbar/httpengine/rx"
)

// Tx is created alongside its request's Rx and discarded at COMPLETE.
type Tx struct {
	Status  int
	Headers textproto.MIMEHeader

	OutputRanges *rx.Range
	CurrentRange *rx.Range
	ChunkSize    int64

	Finalized          bool
	FinalizedOutput    bool
	FinalizedConnector bool

	BytesWritten int64
	WriteBlocked bool

	Length   int64
	Filename string
	Handler  string
}

// New returns a zeroed Tx with an empty header map and unknown length.
func New() *Tx {
	return &Tx{Headers: textproto.MIMEHeader{}, Status: 200, Length: -1}
}

// Reset returns tx to its post-New state for keep-alive reuse.
func (tx *Tx) Reset() {
	*tx = *New()
}

// Complete reports whether every stage of finalization observed in spec §4.1
// has happened: the handler is done producing body, the output queue has
// emitted END, and the connector has flushed it to the socket.
func (tx *Tx) Complete() bool {
	return tx.Finalized && tx.FinalizedOutput && tx.FinalizedConnector
}

// NeedsChunking reports whether the response body must be chunk-framed:
// Length is unknown (streaming handler) and the peer is HTTP/1.1 (chunked
// is not legal to send to an HTTP/1.0 client per spec §4.2/§7).
func (tx *Tx) NeedsChunking(http10 bool) bool {
	return tx.Length < 0 && !http10
}
