// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opa decodes City of Philadelphia OPA account responses and
// flattens them into property and valuation rows.
package opa

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalid reports a body that is not valid JSON.
	ErrInvalid = errors.New("invalid OPA response")

	// ErrNotSuccess reports a well-formed response whose status is not "success".
	ErrNotSuccess = errors.New("OPA response not successful")
)

// Record is one decoded account. Property aligns with PropertyColumns and
// each Valuations row aligns with ValuationColumns.
type Record struct {
	AccountNumber string
	Property      []string
	Valuations    [][]string
}

// Fields returns the property row keyed by qualified column name.
func (r *Record) Fields() map[string]string {
	m := make(map[string]string, len(PropertyColumns))
	for i, c := range PropertyColumns {
		m[c.Key()] = r.Property[i]
	}
	return m
}

// ValuationFields returns valuation i keyed by column name.
func (r *Record) ValuationFields(i int) map[string]string {
	m := make(map[string]string, len(ValuationColumns))
	for j, name := range ValuationColumns {
		m[name] = r.Valuations[i][j]
	}
	return m
}

// Decode parses an OPA account response body. Sub-objects missing from the
// response yield empty cells.
func Decode(body []byte) (*Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalid
	}
	if status := gjson.GetBytes(body, "status").String(); status != "success" {
		return nil, fmt.Errorf("%w: status %q", ErrNotSuccess, status)
	}

	p := gjson.GetBytes(body, "data.property")
	rec := &Record{
		AccountNumber: p.Get("account_number").String(),
		Property:      make([]string, len(PropertyColumns)),
	}
	for i, c := range PropertyColumns {
		rec.Property[i] = FormatValue(groupValue(p, c.Group).Get(c.Name))
	}

	for _, v := range p.Get("valuation_history").Array() {
		row := make([]string, len(ValuationColumns))
		for i, name := range ValuationColumns {
			row[i] = FormatValue(v.Get(name))
		}
		rec.Valuations = append(rec.Valuations, row)
	}
	return rec, nil
}

func groupValue(p gjson.Result, g Group) gjson.Result {
	path := groupPaths[g]
	if path == "" {
		return p
	}
	return p.Get(path)
}

// FormatValue renders a JSON value as a CSV cell. Integral numbers print
// without an exponent; other numbers use the shortest representation.
// Null, missing, objects and arrays render empty.
func FormatValue(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return FormatDate(v.Str)
	case gjson.Number:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1e15 {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		return ""
	}
}

var msDate = regexp.MustCompile(`/Date\((\d+)[-+]\d*\)`)

// dateShift converts the service's UTC timestamps to Eastern daylight dates.
const dateShift = -4 * time.Hour

// FormatDate converts a Microsoft JSON date such as "/Date(1357016400000-0500)/"
// to YYYY-MM-DD. Any other string is returned unchanged.
func FormatDate(s string) string {
	m := msDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return s
	}
	return time.UnixMilli(ms).UTC().Add(dateShift).Format("2006-01-02")
}
