// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func TestApplyNetworkDefaults(t *testing.T) {
	cfg := &config{}
	params, err := applyNetwork(cfg)
	require.NoError(t, err)

	require.Equal(t, &chaincfg.MainNetParams, params)
	require.Equal(t, "127.0.0.1:8332", cfg.RPCServer)
	require.Contains(t, cfg.RPCCookie, ".cookie")
	require.NotContains(t, cfg.RPCCookie, "testnet3")
}

func TestApplyNetworkTestNet(t *testing.T) {
	cfg := &config{TestNet3: true}
	params, err := applyNetwork(cfg)
	require.NoError(t, err)

	require.Equal(t, &chaincfg.TestNet3Params, params)
	require.Equal(t, "127.0.0.1:18332", cfg.RPCServer)
	require.Contains(t, cfg.RPCCookie, "testnet3")
}

func TestApplyNetworkRegTest(t *testing.T) {
	cfg := &config{RegressionTest: true}
	params, err := applyNetwork(cfg)
	require.NoError(t, err)

	require.Equal(t, &chaincfg.RegressionNetParams, params)
	require.Equal(t, "127.0.0.1:18443", cfg.RPCServer)
	require.Contains(t, cfg.RPCCookie, "regtest")
}

func TestApplyNetworkConflict(t *testing.T) {
	cfg := &config{TestNet3: true, RegressionTest: true}
	_, err := applyNetwork(cfg)
	require.Error(t, err)
}

func TestApplyNetworkExplicitOptions(t *testing.T) {
	cfg := &config{
		RPCServer: "node.example.com:8332",
		RPCUser:   "user",
		RPCPass:   "pass",
	}
	_, err := applyNetwork(cfg)
	require.NoError(t, err)

	// Explicit credentials suppress the cookie fallback, and an
	// explicit server is left alone.
	require.Equal(t, "node.example.com:8332", cfg.RPCServer)
	require.Empty(t, cfg.RPCCookie)
}
