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

// Package engineconfig is the engine's configuration surface: the
// configurable limits of spec.md §6, listen address, and TLS, validated the
// way httpserver/config.go validates ServerConfig.
package engineconfig

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	libtls "github.com/nabbar/httpengine/certificates"
	liberr "github.com/nabbar/httpengine/errors"

	"github.com/nabbar/httpengine/enginerr"
)

// Limits mirrors the configurable-limits list of spec.md §6 exactly: one
// field per named limit, plus the four durations.
type Limits struct {
	BufferSize           int64 `mapstructure:"bufferSize" json:"bufferSize" yaml:"bufferSize" toml:"bufferSize" validate:"gte=0"`
	CacheItemSize        int64 `mapstructure:"cacheItemSize" json:"cacheItemSize" yaml:"cacheItemSize" toml:"cacheItemSize" validate:"gte=0"`
	ChunkSize            int64 `mapstructure:"chunkSize" json:"chunkSize" yaml:"chunkSize" toml:"chunkSize" validate:"gte=0"`
	ClientMax            int64 `mapstructure:"clientMax" json:"clientMax" yaml:"clientMax" toml:"clientMax" validate:"gte=0"`
	ConnectionsMax       int64 `mapstructure:"connectionsMax" json:"connectionsMax" yaml:"connectionsMax" toml:"connectionsMax" validate:"gte=0"`
	HeaderMax            int64 `mapstructure:"headerMax" json:"headerMax" yaml:"headerMax" toml:"headerMax" validate:"gte=0"`
	HeaderSize           int64 `mapstructure:"headerSize" json:"headerSize" yaml:"headerSize" toml:"headerSize" validate:"gte=0"`
	KeepAliveMax         int64 `mapstructure:"keepAliveMax" json:"keepAliveMax" yaml:"keepAliveMax" toml:"keepAliveMax" validate:"gte=0"`
	ReceiveFormSize      int64 `mapstructure:"receiveFormSize" json:"receiveFormSize" yaml:"receiveFormSize" toml:"receiveFormSize" validate:"gte=0"`
	ReceiveBodySize      int64 `mapstructure:"receiveBodySize" json:"receiveBodySize" yaml:"receiveBodySize" toml:"receiveBodySize" validate:"gte=0"`
	ProcessMax           int64 `mapstructure:"processMax" json:"processMax" yaml:"processMax" toml:"processMax" validate:"gte=0"`
	RequestsPerClientMax int64 `mapstructure:"requestsPerClientMax" json:"requestsPerClientMax" yaml:"requestsPerClientMax" toml:"requestsPerClientMax" validate:"gte=0"`
	SessionMax           int64 `mapstructure:"sessionMax" json:"sessionMax" yaml:"sessionMax" toml:"sessionMax" validate:"gte=0"`
	TransmissionBodySize int64 `mapstructure:"transmissionBodySize" json:"transmissionBodySize" yaml:"transmissionBodySize" toml:"transmissionBodySize" validate:"gte=0"`
	UploadSize           int64 `mapstructure:"uploadSize" json:"uploadSize" yaml:"uploadSize" toml:"uploadSize" validate:"gte=0"`
	URISize              int64 `mapstructure:"uriSize" json:"uriSize" yaml:"uriSize" toml:"uriSize" validate:"gte=0"`

	InactivityTimeout   time.Duration `mapstructure:"inactivityTimeout" json:"inactivityTimeout" yaml:"inactivityTimeout" toml:"inactivityTimeout" validate:"gte=0"`
	RequestTimeout      time.Duration `mapstructure:"requestTimeout" json:"requestTimeout" yaml:"requestTimeout" toml:"requestTimeout" validate:"gte=0"`
	RequestParseTimeout time.Duration `mapstructure:"requestParseTimeout" json:"requestParseTimeout" yaml:"requestParseTimeout" toml:"requestParseTimeout" validate:"gte=0"`
	SessionTimeout      time.Duration `mapstructure:"sessionTimeout" json:"sessionTimeout" yaml:"sessionTimeout" toml:"sessionTimeout" validate:"gte=0"`
}

// EaseLimits implements spec.md §6's "easeLimits sets all four size limits
// to the maximum representable offset", grounded on httpService.c's
// httpEaseLimits. It is an explicit call, not an automatic trigger: the
// predicate that decides a connection deserves eased limits (an
// authenticated/trusted peer) is an external collaborator (spec §1).
func (l *Limits) EaseLimits() {
	l.ReceiveFormSize = math.MaxInt64
	l.ReceiveBodySize = math.MaxInt64
	l.TransmissionBodySize = math.MaxInt64
	l.UploadSize = math.MaxInt64
}

// Config is the top-level engine configuration: a name, a listen address,
// optional TLS, and the Limits above.
type Config struct {
	Name   string        `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required"`
	Listen string        `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen" validate:"required,hostname_port|tcp_addr"`
	Limits Limits        `mapstructure:"limits" json:"limits" yaml:"limits" toml:"limits" validate:"required"`
	TLS    *libtls.Config `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`

	TLSMandatory bool `mapstructure:"tlsMandatory" json:"tlsMandatory" yaml:"tlsMandatory" toml:"tlsMandatory"`
}

// Default returns sane, conservative limits matching the magnitudes the
// original Appweb/MPR sources default to (a few KB for headers/URI, a few
// MB for bodies), suitable as a starting point before an embedder tunes
// them from a config file.
func Default() *Config {
	return &Config{
		Limits: Limits{
			BufferSize:           4096,
			CacheItemSize:        8192,
			ChunkSize:            4096,
			ClientMax:            0,
			ConnectionsMax:       1000,
			HeaderMax:            64,
			HeaderSize:           8192,
			KeepAliveMax:         100,
			ReceiveFormSize:      1 << 20,
			ReceiveBodySize:      1 << 24,
			ProcessMax:           0,
			RequestsPerClientMax: 0,
			SessionMax:           0,
			TransmissionBodySize: 1 << 24,
			UploadSize:           1 << 24,
			URISize:              4096,
			InactivityTimeout:    60 * time.Second,
			RequestTimeout:       300 * time.Second,
			RequestParseTimeout:  30 * time.Second,
			SessionTimeout:       1800 * time.Second,
		},
	}
}

// Validate runs the struct-tag validation the way ServerConfig.Validate()
// does: validator.New().Struct, with every field failure folded into one
// liberr.Error parent chain.
func (c *Config) Validate() liberr.Error {
	err := enginerr.ErrConfigValidate.Error(nil)

	if er := validator.New().Struct(c); er != nil {
		if e, ok := er.(*validator.InvalidValidationError); ok {
			err.Add(e)
		} else if ve, ok := er.(validator.ValidationErrors); ok {
			for _, e := range ve {
				err.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.StructNamespace(), e.ActualTag()))
			}
		} else {
			err.Add(er)
		}
	}

	if err.HasParent() {
		return err
	}

	return nil
}

// Clone returns a deep-enough copy for per-endpoint overrides (each pool
// entry in a multi-listener deployment starts from the same base Limits).
func (c *Config) Clone() *Config {
	n := *c
	return &n
}
