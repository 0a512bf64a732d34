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

// Package enginetls is the narrow TLS collaborator interface spec.md §1
// names as external: the engine never negotiates a cipher suite or
// validates a chain itself, it only asks a Provider for a *tls.Config
// before handing a listener to enginesrv.
package enginetls

import (
	"crypto/tls"

	libtls "github.com/nabbar/httpengine/certificates"
)

// Provider hands back a ready-to-use *tls.Config, or nil if TLS is not
// configured for this listener.
type Provider interface {
	TLSConfig(serverName string) (*tls.Config, error)
	Enabled() bool
}

// FromCertificates adapts libtls.Config (the certificates package this
// module carries over from the teacher) into a Provider.
type FromCertificates struct {
	Config *libtls.Config
}

func (f FromCertificates) Enabled() bool {
	if f.Config == nil {
		return false
	}
	tc := f.Config.New()
	return tc != nil && tc.LenCertificatePair() > 0
}

func (f FromCertificates) TLSConfig(serverName string) (*tls.Config, error) {
	if f.Config == nil {
		return nil, nil
	}

	tc := f.Config.New()
	if tc == nil || tc.LenCertificatePair() == 0 {
		return nil, nil
	}

	return tc.TlsConfig(serverName), nil
}
