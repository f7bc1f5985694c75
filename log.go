// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/btcsuite/combinetx/rpcnode"
)

// logWriter implements an io.Writer that outputs to stderr and, when
// configured, a rotating log file.  Results (the transaction hex or the
// broadcast txid) go to stdout, so log output must stay off it.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var (
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed
	// on application shutdown.
	logRotator *rotator.Rotator

	log     = backendLog.Logger("CMBX")
	cmbnLog = backendLog.Logger("CMBN")
	rpcnLog = backendLog.Logger("RPCN")
)

func init() {
	rpcnode.UseLogger(rpcnLog)
}

// initLogRotator initializes the logging rotator to write logs to logFile
// and create roll files in the same directory.  It must be called before
// the package-global log rotator variable is used.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %v",
				err)
		}
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %v", err)
	}

	logRotator = r
	return nil
}

// setLogLevels sets the logging level for all subsystems.
func setLogLevels(level btclog.Level) {
	for _, logger := range []btclog.Logger{log, cmbnLog, rpcnLog} {
		logger.SetLevel(level)
	}
}
