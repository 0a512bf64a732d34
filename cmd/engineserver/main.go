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

// Command engineserver wires a minimal, embeddable-by-example server
// binary: load configuration, build the TLS provider, start the service
// registry's timer-backed connection list, and listen -- the composition
// root an embedder's own main() would mirror.
package main

import (
	"flag"
	"os"

	"github.com/nabbar/httpengine/enginesrv"
	"github.com/nabbar/httpengine/enginetls"
	"github.com/nabbar/httpengine/engineconfig"
	"github.com/nabbar/httpengine/enginelog"
	"github.com/nabbar/httpengine/service"
)

func main() {
	cfgPath := flag.String("config", "", "path to a json/yaml/toml config file")
	flag.Parse()

	log := enginelog.New(os.Stderr, enginelog.InfoLevel)

	cfg := engineconfig.Default()
	if *cfgPath != "" {
		loaded, err := engineconfig.LoadConfig(*cfgPath)
		if err != nil {
			log.Error("failed to load config", err, nil)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", err, nil)
		os.Exit(1)
	}

	var tlsProvider enginetls.Provider
	if cfg.TLS != nil {
		tlsProvider = enginetls.FromCertificates{Config: cfg.TLS}
	}

	svc := service.New(log)
	defer svc.Stop()

	srv := enginesrv.New(cfg, tlsProvider, svc, log)

	if raised := srv.Listen(nil); raised != nil {
		log.Error("failed to start listening", raised, nil)
		os.Exit(1)
	}

	srv.WaitNotify()
}
