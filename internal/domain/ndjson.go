package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalNDJSON renders records as UTF-8 newline-delimited JSON, one record
// per line. Non-ASCII characters (station names, unit glyphs) are emitted
// literally, not escaped, matching what downstream loaders expect.
func MarshalNDJSON(recs []Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i+1, err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalNDJSON parses newline-delimited JSON lines back into records.
func UnmarshalNDJSON(lines [][]byte) ([]Record, error) {
	recs := make([]Record, 0, len(lines))
	for i, line := range lines {
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode record line %d: %w", i+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
