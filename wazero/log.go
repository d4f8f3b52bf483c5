// Package wazero adapts host functions for guests running under the
// tetratelabs/wazero runtime.
package wazero

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	t_wazero "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// HostModuleName is the import module guests use for host functions.
const HostModuleName = "corral:host"

// LogRecord is the wire form of one guest log call.
type LogRecord struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Attrs   []LogAttr `json:"attrs,omitempty"`
}

// LogAttr is one typed key/value pair on a LogRecord.
type LogAttr struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// UnpackPtrLen splits a packed guest pointer+length pair.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	//nolint:gosec // guest pointers and lengths are 32-bit
	return uint32(packed >> 32), uint32(packed)
}

// InstantiateLogging registers the `log` host function under HostModuleName.
// The guest passes a packed pointer to a JSON LogRecord; the host emits it
// through slog and returns nothing.
func InstantiateLogging(ctx context.Context, rt t_wazero.Runtime) error {
	_, err := rt.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(Log), []api.ValueType{api.ValueTypeI64}, nil).
		Export("log").
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("failed to instantiate logging host module: %w", err)
	}
	return nil
}

// Log implements the `log` host function.
func Log(ctx context.Context, mod api.Module, stack []uint64) {
	rec, ok := readLogRecord(ctx, mod, stack[0])
	if !ok {
		return
	}

	level := parseLogLevel(rec.Level)
	attrs := convertLogAttrs(rec.Attrs)

	slog.LogAttrs(ctx, level, rec.Message, attrs...)
}

// readLogRecord reads and unmarshals the log record from guest memory.
func readLogRecord(ctx context.Context, mod api.Module, packed uint64) (*LogRecord, bool) {
	ptr, length := UnpackPtrLen(packed)

	raw, ok := mod.Memory().Read(ptr, length)
	if !ok {
		slog.ErrorContext(ctx, "wazero: failed to read log record from guest memory")
		return nil, false
	}

	var rec LogRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		slog.ErrorContext(ctx, "wazero: failed to unmarshal log record", "error", err)
		return nil, false
	}

	return &rec, true
}

// parseLogLevel converts a string level to slog.Level.
func parseLogLevel(levelStr string) slog.Level {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		slog.Warn("wazero: unknown log level from guest", "level", levelStr)
	}
	return level
}

// convertLogAttrs converts wire attributes to slog.Attr slice.
func convertLogAttrs(wireAttrs []LogAttr) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(wireAttrs))
	for _, attr := range wireAttrs {
		attrs = append(attrs, convertSingleAttr(attr))
	}
	return attrs
}

// convertSingleAttr converts a single wire attribute to slog.Attr.
func convertSingleAttr(attr LogAttr) slog.Attr {
	switch attr.Type {
	case "string":
		return slog.String(attr.Key, attr.Value)
	case "int64":
		if v, err := strconv.ParseInt(attr.Value, 10, 64); err == nil {
			return slog.Int64(attr.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(attr.Value); err == nil {
			return slog.Bool(attr.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
			return slog.Float64(attr.Key, v)
		}
	case "time":
		if v, err := time.Parse(time.RFC3339Nano, attr.Value); err == nil {
			return slog.Time(attr.Key, v)
		}
	case "error":
		return slog.Any(attr.Key, fmt.Errorf("%s", attr.Value))
	}
	return slog.Any(attr.Key, attr.Value)
}
