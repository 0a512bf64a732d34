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

// Package enginerr is the engine-wide error code registry. It follows the
// same registration idiom as httpserver/error.go: a contiguous iota block
// offset from a reserved package minimum, one init() registering the
// message function, and a message-lookup switch.
package enginerr

import "github.com/nabbar/httpengine/errors"

// MinPkgEngine is this module's reserved offset into the golib error-code
// space, claimed from errors.MinAvailable.
const MinPkgEngine = errors.MinAvailable

const (
	// ErrLimitExceeded: body/header/URI/form size over a configured limit.
	ErrLimitExceeded errors.CodeError = iota + MinPkgEngine
	// ErrMalformed: request/status line or header grammar is invalid.
	ErrMalformed
	// ErrProtocolMismatch: unsupported HTTP version or unmet Expect.
	ErrProtocolMismatch
	// ErrTimeout: inactivity, parse, or request-duration timeout fired.
	ErrTimeout
	// ErrCommsLost: the socket closed mid-request.
	ErrCommsLost
	// ErrUpstreamRefused: downstream queue is full and cannot be retried.
	ErrUpstreamRefused
	// ErrHandlerFailure: the application handler raised a 500-class error.
	ErrHandlerFailure
	// ErrConflict: contradictory request data (e.g. duplicate Content-Length).
	ErrConflict

	// ErrListenFailed: enginesrv could not bind or start accepting.
	ErrListenFailed
	// ErrConfigValidate: engineconfig.Config failed struct validation.
	ErrConfigValidate
	// ErrShutdownTimeout: graceful shutdown did not finish within its budget.
	ErrShutdownTimeout
	// ErrPortInUse: the configured listen address is already bound.
	ErrPortInUse
	// ErrStageNotFound: a pipeline referenced a stage name with no registration.
	ErrStageNotFound
	// ErrPipelineBuild: the incoming/outgoing queue chain could not be built.
	ErrPipelineBuild
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrLimitExceeded)
	errors.RegisterIdFctMessage(ErrLimitExceeded, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrLimitExceeded:
		return "configured limit exceeded"
	case ErrMalformed:
		return "malformed request"
	case ErrProtocolMismatch:
		return "protocol version or expectation mismatch"
	case ErrTimeout:
		return "connection timed out"
	case ErrCommsLost:
		return "communication lost with peer"
	case ErrUpstreamRefused:
		return "downstream stage refused to accept more data"
	case ErrHandlerFailure:
		return "handler failed to process request"
	case ErrConflict:
		return "conflicting request data"
	case ErrListenFailed:
		return "server failed to start listening"
	case ErrConfigValidate:
		return "configuration is not valid"
	case ErrShutdownTimeout:
		return "shutdown did not complete before timeout"
	case ErrPortInUse:
		return "listen address is already in use"
	case ErrStageNotFound:
		return "no stage registered under that name"
	case ErrPipelineBuild:
		return "failed to build request pipeline"
	}

	return ""
}
