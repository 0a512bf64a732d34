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

package enginerr

import "github.com/nabbar/httpengine/errors"

// Severity is the channel an error is raised on (spec 4.7): ABORT closes the
// socket once the response is written, CLOSE merely drops keep-alive, and
// SeverityNone leaves the connection able to persist.
type Severity uint8

const (
	SeverityNone Severity = iota
	SeverityClose
	SeverityAbort
)

// Raised pairs a registered CodeError with the HTTP status it maps to and
// the severity channel it was raised on, so the pump loop can decide
// keep-alive disposition without re-deriving it from the error code.
type Raised struct {
	errors.Error
	Status   int
	Severity Severity
}

// Raise builds a Raised error carrying status and severity alongside the
// registered CodeError message.
func Raise(code errors.CodeError, status int, severity Severity, parent ...error) *Raised {
	return &Raised{
		Error:    code.Error(parent...),
		Status:   status,
		Severity: severity,
	}
}

// Raisef is Raise with a formatted message, following CodeError.Errorf's
// same "ignore extra args beyond the format's verbs" behavior.
func Raisef(code errors.CodeError, status int, severity Severity, args ...interface{}) *Raised {
	return &Raised{
		Error:    code.Errorf(args...),
		Status:   status,
		Severity: severity,
	}
}
