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

// Package enginectx threads cancellation and a small set of well-known,
// typed values (request id, negotiated TLS state) through Service and Conn,
// built on the generic libctx.Config[string] the wider golib context
// package exposes.
package enginectx

import (
	"context"

	libctx "github.com/nabbar/httpengine/context"
)

// Key names the well-known values carried in a Store.
type Key string

const (
	KeyRequestID Key = "request-id"
	KeyRemoteTLS Key = "remote-tls"
)

// Store is the per-Service or per-Conn context/value holder.
type Store = libctx.Config[string]

// New returns a Store derived from parent (context.Background if nil).
func New(parent context.Context) Store {
	return libctx.New[string](parent)
}

// Derive returns a child Store inheriting parent's cancellation, used when a
// Conn is spawned under a Service's lifetime.
func Derive(parent Store) Store {
	return parent.Clone(parent.GetContext())
}
