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

// Package enginesrv is the listener lifecycle adapted from the teacher's
// httpserver/server.go: bind, accept, graceful Shutdown/Restart,
// WaitNotify on OS signals, and PortInUse pre-flight -- generalized to
// hand each accepted connection to conn.Pump instead of *http.Server,
// since HTTP/2 framing and net/http's own server loop are out of scope.
package enginesrv

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/nabbar/httpengine/conn"
	"github.com/nabbar/httpengine/engineconfig"
	"github.com/nabbar/httpengine/enginelog"
	"github.com/nabbar/httpengine/enginerr"
	"github.com/nabbar/httpengine/enginetls"
	"github.com/nabbar/httpengine/service"
)

const (
	timeoutShutdown = 10 * time.Second
	timeoutPortUse  = 2 * time.Second
)

// Server is the listener lifecycle surface, mirroring httpserver.Server's
// method set.
type Server interface {
	GetConfig() *engineconfig.Config
	SetConfig(cfg *engineconfig.Config)

	GetName() string
	GetBindable() string

	IsRunning() bool
	IsTLS() bool

	Listen(handler conn.Handler) *enginerr.Raised
	WaitNotify()
	Restart()
	Shutdown()

	PortInUse() *enginerr.Raised
}

type server struct {
	run atomic.Bool

	cfg *engineconfig.Config
	tls enginetls.Provider
	svc *service.Service
	log enginelog.Logger

	ln  net.Listener
	cnl context.CancelFunc
}

// New returns a Server bound to cfg, publishing accepted connections into
// svc and logging through log, the way NewServer(cfg) does for the
// teacher's net/http-backed lifecycle.
func New(cfg *engineconfig.Config, tls enginetls.Provider, svc *service.Service, log enginelog.Logger) Server {
	return &server{cfg: cfg, tls: tls, svc: svc, log: log}
}

func (s *server) GetConfig() *engineconfig.Config { return s.cfg }
func (s *server) SetConfig(cfg *engineconfig.Config) { s.cfg = cfg }

func (s *server) GetName() string {
	if s.cfg.Name == "" {
		return s.GetBindable()
	}
	return s.cfg.Name
}

func (s *server) GetBindable() string { return s.cfg.Listen }

func (s *server) IsRunning() bool { return s.run.Load() }

func (s *server) IsTLS() bool { return s.tls != nil && s.tls.Enabled() }

// PortInUse mirrors server.go's PortInUse: a short dial against the
// configured address succeeds only if something is already listening.
func (s *server) PortInUse() *enginerr.Raised {
	d := net.Dialer{}
	ctx, cnl := context.WithTimeout(context.Background(), timeoutPortUse)
	defer cnl()

	c, err := d.DialContext(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return nil
	}
	_ = c.Close()
	return enginerr.Raise(enginerr.ErrPortInUse, 0, enginerr.SeverityNone)
}

// Listen binds the configured address (TLS-wrapped when the provider is
// enabled) and accepts connections on a background goroutine until
// Shutdown cancels the listener's context, mirroring server.go's
// Listen/goroutine/BaseContext structure minus the http2.Server wiring.
func (s *server) Listen(handler conn.Handler) *enginerr.Raised {
	if s.IsRunning() {
		s.Shutdown()
	}

	for i := 0; i < 5; i++ {
		if raised := s.PortInUse(); raised != nil {
			s.Shutdown()
		} else {
			break
		}
	}

	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return enginerr.Raise(enginerr.ErrListenFailed, 0, enginerr.SeverityAbort, err)
	}

	if s.tls != nil && s.tls.Enabled() {
		tc, er := s.tls.TLSConfig("")
		if er != nil {
			_ = ln.Close()
			return enginerr.Raise(enginerr.ErrListenFailed, 0, enginerr.SeverityAbort, er)
		}
		if tc != nil {
			ln = tls.NewListener(ln, tc)
		}
	}

	ctx, cnl := context.WithCancel(context.Background())
	s.ln = ln
	s.cnl = cnl
	s.run.Store(true)

	if s.log != nil {
		s.log.Info("server '%s' listening on %s", nil, s.GetName(), s.GetBindable())
	}

	go s.acceptLoop(ctx, ln, handler)

	return nil
}

func (s *server) acceptLoop(ctx context.Context, ln net.Listener, handler conn.Handler) {
	defer s.run.Store(false)

	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			if s.log != nil {
				s.log.Error("accept failed on '%s'", err, nil, s.GetName())
			}
			continue
		}

		go s.serve(nc, handler)
	}
}

// serve drives one accepted connection: every read is fed to Conn.Pump,
// across keep-alive requests, until the socket read fails or a completed
// request does not persist.
func (s *server) serve(nc net.Conn, handler conn.Handler) {
	sock := newNetSocket(nc)
	defer sock.Close()

	c := conn.New(sock, nil, &s.cfg.Limits, true)
	s.svc.AddConn(c, handler)
	defer s.svc.RemoveConn(c)

	buf := make([]byte, s.cfg.Limits.BufferSize)
	if len(buf) == 0 {
		buf = make([]byte, 4096)
	}

	for {
		n, err := sock.Read(buf)
		if n > 0 {
			c.Feed(buf[:n])
			c.Pump(handler)
		}
		if err != nil {
			return
		}
		if c.State == conn.StateComplete && !c.ShouldPersist() {
			return
		}
	}
}

func (s *server) WaitNotify() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	s.Shutdown()
}

func (s *server) Restart() {
	_ = s.Listen(nil)
}

func (s *server) Shutdown() {
	if s.log != nil {
		s.log.Info("shutting down server '%s'", nil, s.GetName())
	}

	if s.cnl != nil {
		s.cnl()
	}

	_, cancel := context.WithTimeout(context.Background(), timeoutShutdown)
	defer cancel()

	if s.ln != nil {
		_ = s.ln.Close()
	}

	s.run.Store(false)
}
