package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Load decodes the JSON document stored under key. A missing key, a failed
// read or a malformed document all yield fallback; the latter two are logged.
func Load[T any](kv KV, key string, fallback T, logger *slog.Logger) T {
	if logger == nil {
		logger = slog.Default()
	}
	raw, ok, err := kv.Get(key)
	if err != nil {
		logger.Warn("read stored value", "key", key, "error", err)
		return fallback
	}
	if !ok || raw == "" {
		return fallback
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logger.Warn("discarding malformed stored value", "key", key, "error", err)
		return fallback
	}
	return v
}

// Save encodes v as JSON under key. Failures are logged and returned; the
// caller's in-memory state is left as is.
func Save(kv KV, key string, v any, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode value", "key", key, "error", err)
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := kv.Set(key, string(data)); err != nil {
		logger.Error("persist value", "key", key, "error", err)
		return err
	}
	return nil
}
