// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag is the scan core's diagnostic sink: spec §7 requires
// unsupported cops and output-buffer overflows to be logged, not
// thrown, so the scan can continue (or, in debug mode, abort). It wraps
// github.com/charmbracelet/log the way the teacher's internal/start
// wraps the standard log package around a service's lifecycle errors.
package diag

import (
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/lestrrat-go/strftime"
)

// Message IDs, carried over verbatim from the original engine's shared
// logging facility (spec §6, SPEC_FULL.md supplemented feature 2).
const (
	MsgUnsupportedCop = 34
	MsgBufferOverflow = 35
)

var (
	mu     sync.Mutex
	logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "colscan",
	})
)

// SetOutput redirects the diagnostic logger to l.
func SetOutput(l *charmlog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Log emits a structured diagnostic record for one of the message IDs
// above, with arbitrary key/value context (LBID, RID, cop, ...).
func Log(msgID int, kv ...interface{}) {
	mu.Lock()
	l := logger
	mu.Unlock()
	args := append([]interface{}{"msg_id", msgID}, kv...)
	l.Warn("scan diagnostic", args...)
}

// LogOverflow reports an output-buffer overflow (message 35) with
// human-readable byte counts. The caller decides whether to treat it as
// fatal (spec §7's debug-build behavior) or to return ErrBufferOverflow.
func LogOverflow(written, needed, outSize int) {
	Log(MsgBufferOverflow,
		"written", humanize.Bytes(uint64(written)),
		"needed", humanize.Bytes(uint64(needed)),
		"out_size", humanize.Bytes(uint64(outSize)),
	)
}

// ErrBufferOverflow is returned by scan.Scan when Request.Debug is false
// and an emit would exceed the caller-supplied output capacity.
var ErrBufferOverflow = &overflowError{}

type overflowError struct{}

func (*overflowError) Error() string { return "colscan: output buffer overflow" }

var datePattern = mustCompile("%Y-%m-%d %H:%M:%S")

func mustCompile(pat string) *strftime.Strftime {
	f, err := strftime.New(pat)
	if err != nil {
		panic(err)
	}
	return f
}

// FormatEpochSeconds renders a DATE/DATETIME/TIMESTAMP sentinel that
// survived into a zone-map Min/Max as a human date, for diagnostic
// logging only — the core never interprets date bit-layouts for
// comparison purposes (that stays in compare's Default-kind integer
// path, per spec §4.2).
func FormatEpochSeconds(epoch int64) string {
	var sb stringsBuilder
	if err := datePattern.Format(&sb, time.Unix(epoch, 0).UTC()); err != nil {
		return "invalid"
	}
	return sb.String()
}

// stringsBuilder is a tiny io.Writer over a byte slice so
// FormatEpochSeconds avoids importing strings just for this.
type stringsBuilder struct {
	b []byte
}

func (s *stringsBuilder) Write(p []byte) (int, error) {
	s.b = append(s.b, p...)
	return len(p), nil
}
func (s *stringsBuilder) String() string { return string(s.b) }
