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

package enginelog

import (
	"io"
	"log"

	"github.com/sirupsen/logrus"
)

// Level mirrors the golib logger/level package's ordering: each step also
// gates the io.Writer bridge (GetStdLogger) the same way.
type Level uint8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	NilLevel
)

func (l Level) logrus() logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.PanicLevel
	}
}

// Fields is a shorthand alias kept distinct from logrus.Fields so callers
// never need to import logrus directly.
type Fields map[string]interface{}

// Logger is the logging surface every engine package is handed at
// construction (Service, Conn, enginesrv). It never panics or exits the
// process on its own -- Fatal/Panic style behavior is the embedder's call.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level

	Debug(msg string, fields Fields, args ...interface{})
	Info(msg string, fields Fields, args ...interface{})
	Warning(msg string, fields Fields, args ...interface{})
	Error(msg string, err error, fields Fields, args ...interface{})

	// GetStdLogger bridges to the standard library for packages (like
	// net/http.Server.ErrorLog) that only accept a *log.Logger.
	GetStdLogger(lvl Level) *log.Logger
}

type logger struct {
	l *logrus.Logger
}

// New returns a Logger writing formatted entries to w (os.Stderr if nil),
// gated at lvl.
func New(w io.Writer, lvl Level) Logger {
	l := logrus.New()
	if w != nil {
		l.SetOutput(w)
	}
	l.SetLevel(lvl.logrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logger{l: l}
}

func (o *logger) SetLevel(lvl Level) {
	o.l.SetLevel(lvl.logrus())
}

func (o *logger) GetLevel() Level {
	switch o.l.GetLevel() {
	case logrus.DebugLevel:
		return DebugLevel
	case logrus.InfoLevel:
		return InfoLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.FatalLevel:
		return FatalLevel
	default:
		return NilLevel
	}
}

func (o *logger) entry(fields Fields) *logrus.Entry {
	if len(fields) == 0 {
		return logrus.NewEntry(o.l)
	}
	return o.l.WithFields(logrus.Fields(fields))
}

func (o *logger) Debug(msg string, fields Fields, args ...interface{}) {
	o.entry(fields).Debugf(msg, args...)
}

func (o *logger) Info(msg string, fields Fields, args ...interface{}) {
	o.entry(fields).Infof(msg, args...)
}

func (o *logger) Warning(msg string, fields Fields, args ...interface{}) {
	o.entry(fields).Warnf(msg, args...)
}

func (o *logger) Error(msg string, err error, fields Fields, args ...interface{}) {
	e := o.entry(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Errorf(msg, args...)
}

func (o *logger) GetStdLogger(lvl Level) *log.Logger {
	return log.New(o.l.WriterLevel(lvl.logrus()), "", 0)
}
