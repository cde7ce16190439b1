package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tempo/internal/core"
)

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// parsePathID extracts a positive integer id from the named path segment.
func parsePathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// parseWeekDate reads the date query parameter, defaulting to today.
func parseWeekDate(r *http.Request) (core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		now := time.Now().UTC()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return core.ParseDate(raw)
}

// parseRangeQuery reads start/end query parameters. Absent bounds default to
// a wide range so the page shows everything.
func parseRangeQuery(r *http.Request) (start, end core.Date, err error) {
	now := time.Now().UTC()
	start = core.NewDate(2000, 1, 1)
	end = core.NewDate(now.Year(), int(now.Month()), now.Day())

	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		start, err = core.ParseDate(raw)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end")); raw != "" {
		end, err = core.ParseDate(raw)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date: %w", err)
		}
	}
	return start, end, nil
}
