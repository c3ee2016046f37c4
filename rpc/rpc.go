// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rpc names the service boundary above the scan core (spec §6
// "External interfaces"). The core itself has no network surface
// (spec §1 Non-goals); this interface is what a real dispatch layer
// would implement to hand blocks to package scan, and what
// cmd/colscan's subcommands call through so the CLI exercises the same
// seam a production dispatcher would.
package rpc

import (
	"context"

	"github.com/solidcoredata/colscan/scan"
)

// ScanService runs the scan core against one block. outSize is the
// caller's output buffer capacity (spec §3 invariant 5).
type ScanService interface {
	Scan(ctx context.Context, req *scan.Request, outSize int) (*scan.Response, error)
}

// Local is the in-process ScanService: no framing, no transport, just
// the context-cancellation check a real RPC stub would also owe its
// caller before doing synchronous work.
type Local struct{}

func (Local) Scan(ctx context.Context, req *scan.Request, outSize int) (*scan.Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return scan.Scan(req, make([]byte, outSize))
}
