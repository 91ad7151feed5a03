package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yumhub/yumhub-backend/pkg/enums"
)

// HistoryTimeLayout is the timestamp format stored in status history entries.
const HistoryTimeLayout = "2006-01-02 15:04:05"

// HistoryEntry records when an order entered a status.
type HistoryEntry struct {
	Status enums.OrderStatus `json:"status"`
	At     time.Time         `json:"at"`
}

// StatusHistory is the append-only, insertion-ordered status log of an order.
// It is stored as a JSON object of status -> timestamp.
type StatusHistory struct {
	entries []HistoryEntry
}

// NewStatusHistory starts a history with a single entry.
func NewStatusHistory(status enums.OrderStatus, at time.Time) StatusHistory {
	var h StatusHistory
	h.Append(status, at)
	return h
}

// Append records status at the given time, truncated to whole seconds in UTC.
func (h *StatusHistory) Append(status enums.OrderStatus, at time.Time) {
	h.entries = append(h.entries, HistoryEntry{Status: status, At: at.UTC().Truncate(time.Second)})
}

// Entries returns a copy of the entries in insertion order.
func (h StatusHistory) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h StatusHistory) Len() int {
	return len(h.entries)
}

// Serialize renders the history as a JSON object preserving insertion order.
func (h StatusHistory) Serialize() (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range h.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Status.String())
		if err != nil {
			return "", err
		}
		value, err := json.Marshal(entry.At.Format(HistoryTimeLayout))
		if err != nil {
			return "", err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// ParseStatusHistory decodes a stored history. Blank input and JSON null
// yield an empty history. Malformed input is an error; callers must not
// replace it with an empty history.
func ParseStatusHistory(raw string) (StatusHistory, error) {
	var h StatusHistory
	if trimmed := strings.TrimSpace(raw); trimmed == "" || trimmed == "null" {
		return h, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return h, fmt.Errorf("status history: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return h, fmt.Errorf("status history: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return h, fmt.Errorf("status history key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return h, fmt.Errorf("status history: unexpected key %v", keyTok)
		}
		status, err := enums.ParseOrderStatus(key)
		if err != nil {
			return h, fmt.Errorf("status history: %w", err)
		}

		var stamp string
		if err := dec.Decode(&stamp); err != nil {
			return h, fmt.Errorf("status history value for %s: %w", key, err)
		}
		at, err := time.ParseInLocation(HistoryTimeLayout, stamp, time.UTC)
		if err != nil {
			return h, fmt.Errorf("status history timestamp for %s: %w", key, err)
		}
		h.entries = append(h.entries, HistoryEntry{Status: status, At: at})
	}

	if _, err := dec.Token(); err != nil {
		return h, fmt.Errorf("status history: %w", err)
	}
	if dec.More() {
		return h, fmt.Errorf("status history: trailing data")
	}
	return h, nil
}
