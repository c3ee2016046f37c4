// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command colscan drives the column-block scan core directly, the way
// a support engineer would reproduce a zone-map discrepancy offline
// without standing up the full storage engine around it.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/solidcoredata/colscan/coltype"
	"github.com/solidcoredata/colscan/compare"
	cfg "github.com/solidcoredata/colscan/config"
	"github.com/solidcoredata/colscan/filter"
	"github.com/solidcoredata/colscan/internal/blockbuild"
	"github.com/solidcoredata/colscan/internal/diag"
	"github.com/solidcoredata/colscan/internal/start"
	"github.com/solidcoredata/colscan/rpc"
	"github.com/solidcoredata/colscan/scan"
)

var cli struct {
	Config string `help:"Configuration directory (colscan.yaml overrides)." type:"path"`

	Scan ScanCmd `cmd:"" help:"Run the scan core against a synthetic block."`
	Soak SoakCmd `cmd:"" help:"Dispatch concurrent scans across a worker pool until interrupted."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("colscan"),
		kong.Description("Drive the column-block scan-and-filter primitive directly."),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}

var sqlTypeNames = map[string]coltype.SQLType{
	"int":       coltype.Int,
	"uint":      coltype.UInt,
	"bigint":    coltype.BigInt,
	"ubigint":   coltype.UBigInt,
	"float":     coltype.Float,
	"double":    coltype.Double,
	"udouble":   coltype.UDouble,
	"date":      coltype.Date,
	"datetime":  coltype.Datetime,
	"timestamp": coltype.Timestamp,
	"time":      coltype.Time,
	"char":      coltype.Char,
	"varchar":   coltype.Varchar,
	"text":      coltype.Text,
	"blob":      coltype.Blob,
	"decimal":   coltype.Decimal,
}

func parseSQLType(s string) (coltype.SQLType, error) {
	t, ok := sqlTypeNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unrecognized column type %q", s)
	}
	return t, nil
}

// ScanCmd builds a synthetic block of sequential values (i, i+0.5 for
// float types, or the strings "v0", "v1", ... for text types), applies
// a filter, and prints a summary of the response header (NVALS,
// RidFlags, stream size, and Min/Max when valid). The matching rows
// themselves are not printed.
type ScanCmd struct {
	Type   string `default:"int" help:"Logical column type (int, uint, float, double, char, ...)."`
	Width  int    `default:"4" help:"Column width in bytes (1, 2, 4, 8, or 16)."`
	Count  int    `default:"32" help:"Number of synthetic cells to generate."`
	Filter string `default:"" help:"Filter DSL, e.g. \"AND ge 5 le 20\"."`
	Output string `default:"rid,datavalue" help:"Comma-separated output selectors: rid, token, datavalue."`
}

func (c *ScanCmd) Run() error {
	overrides, err := cfg.Load(cli.Config)
	if err != nil {
		return err
	}
	if overrides.SmallArrayThreshold > 0 {
		filter.SetSmallArrayThreshold(overrides.SmallArrayThreshold)
	}

	sqlType, err := parseSQLType(c.Type)
	if err != nil {
		return err
	}
	if !coltype.ValidWidth(c.Width) {
		return fmt.Errorf("width must be one of 1, 2, 4, 8, 16, got %d", c.Width)
	}

	block := synthesizeBlock(sqlType, c.Width, c.Count)

	elements, bop, err := parseFilterDSL(c.Filter, c.Width)
	if err != nil {
		return err
	}

	ot, err := parseOutputType(c.Output)
	if err != nil {
		return err
	}

	ti := compare.TypeInfo{BinSort: true, NoPad: true}
	if overrides.DisableBinSortFastPath {
		ti.BinSort = false
		ti.NoPad = false
	}

	req := &scan.Request{
		Header:         scan.Header{LBID: lbidFromUUID()},
		OutputType:     ot,
		ColType:        scan.ColumnType{SQLType: sqlType, Width: c.Width, Collation: ti},
		BOP:            bop,
		FilterElements: elements,
		Block:          block,
	}

	svc := rpc.Local{}
	resp, err := svc.Scan(context.Background(), req, len(block)*(2+c.Width))
	if err != nil {
		return err
	}

	fmt.Printf("lbid=%d nvals=%d valid_minmax=%v rid_flags=%#02x stream=%s\n",
		resp.Header.LBID, resp.NVALS, resp.ValidMinMax, resp.RidFlags, humanize.Bytes(uint64(len(resp.Stream))))
	if resp.ValidMinMax {
		fmt.Printf("min=% x max=% x\n", resp.Min, resp.Max)
	}
	return nil
}

func parseOutputType(s string) (scan.OutputType, error) {
	var ot scan.OutputType
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "rid":
			ot |= scan.OTRid
		case "token":
			ot |= scan.OTToken
		case "datavalue":
			ot |= scan.OTDataValue
		case "":
		default:
			return 0, fmt.Errorf("unrecognized output selector %q", part)
		}
	}
	return ot, nil
}

func synthesizeBlock(sqlType coltype.SQLType, width, count int) []byte {
	b := blockbuild.New(sqlType, width)
	kind := coltype.Select(sqlType, width)
	for i := 0; i < count; i++ {
		switch kind {
		case coltype.KindText:
			b.Put(fmt.Sprintf("v%d", i))
		case coltype.KindFloat:
			if width == 4 {
				b.Put(float32(i) + 0.5)
			} else {
				b.Put(float64(i) + 0.5)
			}
		case coltype.Unsigned:
			b.Put(uint64(i))
		default:
			b.Put(int64(i))
		}
	}
	return b.Block()
}

func lbidFromUUID() uint64 {
	id := uuid.New()
	var v uint64
	for _, b := range id[:8] {
		v = v<<8 | uint64(b)
	}
	return v
}

// SoakCmd dispatches many independent scans concurrently across a
// worker pool, the realization of spec §5's "parallelism is exploited
// above this layer ... from a worker pool," using the same
// errgroup-based lifecycle the teacher's internal/start used for its
// own service group.
type SoakCmd struct {
	Type    string `default:"int" help:"Logical column type."`
	Width   int    `default:"4" help:"Column width in bytes."`
	Count   int    `default:"1024" help:"Cells per synthetic block."`
	Workers int    `default:"4" help:"Concurrent scan workers."`
}

func (c *SoakCmd) Run() error {
	sqlType, err := parseSQLType(c.Type)
	if err != nil {
		return err
	}
	if !coltype.ValidWidth(c.Width) {
		return fmt.Errorf("width must be one of 1, 2, 4, 8, 16, got %d", c.Width)
	}

	block := synthesizeBlock(sqlType, c.Width, c.Count)
	svc := rpc.Local{}

	return start.Start(context.Background(), 5*time.Second, func(ctx context.Context) error {
		return start.RunAll(ctx, soakWorkers(svc, sqlType, c.Width, block, c.Workers)...)
	})
}

func soakWorkers(svc rpc.ScanService, sqlType coltype.SQLType, width int, block []byte, n int) []func(context.Context) error {
	workers := make([]func(context.Context) error, n)
	for i := 0; i < n; i++ {
		i := i
		workers[i] = func(ctx context.Context) error {
			rnd := rand.New(rand.NewSource(int64(i) + 1))
			for ctx.Err() == nil {
				threshold := int64(rnd.Intn(len(block)/width + 1))
				req := &scan.Request{
					Header:         scan.Header{LBID: lbidFromUUID()},
					OutputType:     scan.OTRid,
					ColType:        scan.ColumnType{SQLType: sqlType, Width: width},
					FilterElements: []filter.Element{{Cop: compare.GE, Value: encodeLE(threshold, width)}},
					Block:          block,
				}
				if _, err := svc.Scan(ctx, req, len(block)*2); err != nil {
					diag.Log(diag.MsgUnsupportedCop, "soak_worker", i, "err", err)
				}
				time.Sleep(time.Millisecond)
			}
			return nil
		}
	}
	return workers
}
