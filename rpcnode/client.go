// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpcnode implements the combiner's node interface on top of a
// bitcoind-style JSON-RPC wallet node.
package rpcnode

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/btcsuite/combinetx/combiner"
)

// Config describes how to reach the wallet node.  Either User/Pass or
// CookiePath must be set.
type Config struct {
	// Host is the RPC server address in host:port form.
	Host string

	// User and Pass authenticate against the RPC server.
	User string
	Pass string

	// CookiePath points at a bitcoind RPC authentication cookie and is
	// used when User and Pass are empty.
	CookiePath string

	// Params identify the network the node runs on.  They are needed
	// to turn output scripts back into addresses for ownership
	// queries.
	Params *chaincfg.Params
}

// Client talks to a bitcoind-style wallet node over HTTP POST JSON-RPC
// and implements combiner.Node.
type Client struct {
	rpc    *rpcclient.Client
	params *chaincfg.Params
}

// Compile time check to ensure Client satisfies the combiner.Node
// interface.
var _ combiner.Node = (*Client)(nil)

// New connects a Client according to the given configuration.
func New(cfg *Config) (*Client, error) {
	if cfg.Params == nil {
		return nil, errors.New("rpcnode: chain params are required")
	}

	// Bitcoin Core only supports HTTP POST mode and does not provide
	// TLS by default.
	connCfg := &rpcclient.ConnConfig{
		Host:                cfg.Host,
		User:                cfg.User,
		Pass:                cfg.Pass,
		CookiePath:          cfg.CookiePath,
		HTTPPostMode:        true,
		DisableTLS:          true,
		DisableConnectOnNew: true,
	}
	rpc, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: rpc, params: cfg.Params}, nil
}

// Shutdown tears down the underlying RPC connection.
func (c *Client) Shutdown() {
	c.rpc.Shutdown()
}

// HasWalletTransaction reports whether the wallet knows the given
// transaction.
func (c *Client) HasWalletTransaction(txid *chainhash.Hash) (bool, error) {
	_, err := c.rpc.GetTransaction(txid)
	if err != nil {
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) &&
			rpcErr.Code == btcjson.ErrRPCInvalidAddressOrKey {

			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RawTransaction returns the full transaction along with its confirmation
// count.
func (c *Client) RawTransaction(txid *chainhash.Hash) (*wire.MsgTx, int64, error) {
	result, err := c.rpc.GetRawTransactionVerbose(txid)
	if err != nil {
		return nil, 0, err
	}

	serialized, err := hex.DecodeString(result.Hex)
	if err != nil {
		return nil, 0, err
	}
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(serialized)); err != nil {
		return nil, 0, err
	}

	return &tx, int64(result.Confirmations), nil
}

// IsWalletScript reports whether pkScript pays a single address owned by
// the wallet.  Scripts that do not encode a standard single-address
// destination are never considered wallet change.
func (c *Client) IsWalletScript(pkScript []byte) (bool, error) {
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, c.params)
	if err != nil || len(addrs) != 1 {
		return false, nil
	}

	info, err := c.rpc.GetAddressInfo(addrs[0].EncodeAddress())
	if err != nil {
		return false, err
	}

	log.Tracef("Address %v ismine=%v", addrs[0], info.IsMine)
	return info.IsMine, nil
}

// mempoolEntryResult models the subset of a getmempoolentry (or verbose
// getmempooldescendants) result this tool consumes.  The btcjson model
// still carries the top level modifiedfee field that Bitcoin Core removed
// in 0.20, so the fees object is decoded directly.
type mempoolEntryResult struct {
	Fees struct {
		Base     float64 `json:"base"`
		Modified float64 `json:"modified"`
	} `json:"fees"`
}

func (r *mempoolEntryResult) entry() (combiner.MempoolEntry, error) {
	modified, err := btcutil.NewAmount(r.Fees.Modified)
	if err != nil {
		return combiner.MempoolEntry{}, err
	}
	return combiner.MempoolEntry{ModifiedFee: modified}, nil
}

// MempoolEntry returns the mempool entry for the given transaction.
func (c *Client) MempoolEntry(txid *chainhash.Hash) (*combiner.MempoolEntry, error) {
	param, err := json.Marshal(txid.String())
	if err != nil {
		return nil, err
	}

	raw, err := c.rpc.RawRequest("getmempoolentry",
		[]json.RawMessage{param})
	if err != nil {
		return nil, err
	}

	var result mempoolEntryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	entry, err := result.entry()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MempoolDescendants returns the unconfirmed descendants of the given
// transaction keyed by display-order txid.
func (c *Client) MempoolDescendants(txid *chainhash.Hash) (map[string]combiner.MempoolEntry, error) {
	param, err := json.Marshal(txid.String())
	if err != nil {
		return nil, err
	}
	verbose, err := json.Marshal(true)
	if err != nil {
		return nil, err
	}

	raw, err := c.rpc.RawRequest("getmempooldescendants",
		[]json.RawMessage{param, verbose})
	if err != nil {
		return nil, err
	}

	var results map[string]mempoolEntryResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, err
	}

	descendants := make(map[string]combiner.MempoolEntry, len(results))
	for id, result := range results {
		entry, err := result.entry()
		if err != nil {
			return nil, err
		}
		descendants[id] = entry
	}

	log.Debugf("Transaction %v has %d mempool descendants", txid,
		len(descendants))
	return descendants, nil
}

// FundTransaction asks the wallet to select additional inputs and add a
// change output so tx covers its outputs.  A non-nil changeScript routes
// the change to that script's address instead of a fresh one.
func (c *Client) FundTransaction(tx *wire.MsgTx, changeScript []byte) (*combiner.FundedTx, error) {
	var opts btcjson.FundRawTransactionOpts
	if changeScript != nil {
		_, addrs, _, err := txscript.ExtractPkScriptAddrs(changeScript,
			c.params)
		if err != nil || len(addrs) != 1 {
			return nil, fmt.Errorf("change script %x does not "+
				"encode an address", changeScript)
		}
		changeAddress := addrs[0].EncodeAddress()
		opts.ChangeAddress = &changeAddress
	}

	result, err := c.rpc.FundRawTransaction(tx, opts, nil)
	if err != nil {
		return nil, err
	}

	return &combiner.FundedTx{
		Tx:        result.Transaction,
		Fee:       result.Fee,
		ChangePos: result.ChangePosition,
	}, nil
}

// SignTransaction signs tx with the wallet's keys.
func (c *Client) SignTransaction(tx *wire.MsgTx) (*wire.MsgTx, bool, error) {
	return c.rpc.SignRawTransactionWithWallet(tx)
}

// Broadcast submits tx to the network.
func (c *Client) Broadcast(tx *wire.MsgTx) (*chainhash.Hash, error) {
	return c.rpc.SendRawTransaction(tx, false)
}

// RelayFeePerKB returns the node's minimum relay feerate in satoshis per
// 1000 bytes.
func (c *Client) RelayFeePerKB() (btcutil.Amount, error) {
	info, err := c.rpc.GetNetworkInfo()
	if err != nil {
		return 0, err
	}
	return btcutil.NewAmount(info.RelayFee)
}
