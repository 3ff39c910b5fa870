// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tolist extracts OPA account ids from an address feature document.
// Every feature's attributes.BRT_ID is parsed as a leading base-10 integer
// and the ordered list is written as a compact JSON array.
package tolist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/opa-api/internal/fsutil"
	"github.com/pdiddy/opa-api/pkg/types"
)

// Error taxonomy. Every error returned by this package wraps exactly one
// of these, so callers can classify failures with errors.Is.
var (
	ErrIO    = errors.New("io error")
	ErrParse = errors.New("parse error")
	ErrField = errors.New("field error")
)

type document struct {
	Features *[]json.RawMessage `json:"features"`
}

type feature struct {
	Attributes *attributes `json:"attributes"`
}

type attributes struct {
	BRTID json.RawMessage `json:"BRT_ID"`
}

// Extract decodes an address document and returns one id per feature, in
// feature order. An empty features array yields an empty, non-nil slice.
func Extract(data []byte) ([]int64, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding document: %w", ErrParse, err)
	}
	if doc.Features == nil {
		return nil, fmt.Errorf("%w: document has no features array", ErrParse)
	}

	ids := make([]int64, 0, len(*doc.Features))
	for i, raw := range *doc.Features {
		id, err := featureID(raw)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func featureID(raw json.RawMessage) (int64, error) {
	var f *feature
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%w: decoding feature: %w", ErrField, err)
	}
	if f == nil || f.Attributes == nil {
		return 0, fmt.Errorf("%w: missing attributes", ErrField)
	}

	value, err := brtText(f.Attributes.BRTID)
	if err != nil {
		return 0, err
	}

	id, ok := ParseLeadingInt(value)
	if !ok {
		return 0, fmt.Errorf("%w: BRT_ID %q is not an integer", ErrField, value)
	}
	return id, nil
}

// brtText returns the textual form of a BRT_ID value. Strings are used as
// is; numbers are rendered the way a JavaScript number converts to a string.
func brtText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: missing attributes.BRT_ID", ErrField)
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: decoding BRT_ID: %w", ErrField, err)
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return "", fmt.Errorf("%w: BRT_ID %s is not a finite number", ErrField, raw)
		}
		return numberText(f), nil
	default:
		return "", fmt.Errorf("%w: BRT_ID must be a string or number, got %s", ErrField, raw)
	}
}

// numberText formats f as shortest round-trip decimal, switching to
// exponent form when |f| >= 1e21 or |f| < 1e-6. Zero has no sign.
func numberText(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseLeadingInt parses the longest base-10 integer prefix of s after
// skipping leading whitespace. An optional sign is accepted. Parsing stops
// at the first non-digit, so "12ab" is 12 and "7.9" is 7. It reports false
// when s has no leading digits or the value overflows int64.
func ParseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	prefix := s[:end]
	if prefix[0] == '+' {
		prefix = prefix[1:]
	}
	n, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Encode renders ids as a compact JSON array.
func Encode(ids []int64) ([]byte, error) {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding id list: %w", ErrParse, err)
	}
	return data, nil
}

// Run reads cfg.Input, extracts the id list and writes it to cfg.Output.
// The output is written atomically; on any failure an existing output file
// is left as it was. It returns the number of ids written.
func Run(cfg types.ToListConfig) (int, error) {
	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s: %w", ErrIO, cfg.Input, err)
	}

	ids, err := Extract(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cfg.Input, err)
	}

	out, err := Encode(ids)
	if err != nil {
		return 0, err
	}

	if err := fsutil.WriteFile(cfg.Output, out, 0o644); err != nil {
		return 0, fmt.Errorf("%w: writing %s: %w", ErrIO, cfg.Output, err)
	}
	return len(ids), nil
}
