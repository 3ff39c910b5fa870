// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvout writes decoded OPA records as two CSV streams: one
// property row per account and one valuation row per history entry.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pdiddy/opa-api/internal/opa"
)

// Writer writes property and valuation rows. It is not safe for
// concurrent use; the scraper feeds it from a single goroutine.
type Writer struct {
	props *csv.Writer
	vals  *csv.Writer
	rows  int
}

// New writes both headers and returns a Writer over propW and valW.
func New(propW, valW io.Writer) (*Writer, error) {
	w := &Writer{
		props: csv.NewWriter(propW),
		vals:  csv.NewWriter(valW),
	}
	if err := w.props.Write(opa.PropertyHeader()); err != nil {
		return nil, fmt.Errorf("writing property header: %w", err)
	}
	if err := w.vals.Write(opa.ValuationHeader()); err != nil {
		return nil, fmt.Errorf("writing valuation header: %w", err)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends rec's property row and its valuation rows, each valuation
// suffixed with the account number, then flushes both streams.
func (w *Writer) Write(rec *opa.Record) error {
	if err := w.props.Write(rec.Property); err != nil {
		return fmt.Errorf("writing property %s: %w", rec.AccountNumber, err)
	}
	for _, v := range rec.Valuations {
		row := append(append(make([]string, 0, len(v)+1), v...), rec.AccountNumber)
		if err := w.vals.Write(row); err != nil {
			return fmt.Errorf("writing valuation for %s: %w", rec.AccountNumber, err)
		}
	}
	w.rows++
	return w.Flush()
}

// Rows returns the number of property rows written.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush flushes both streams and reports the first write error.
func (w *Writer) Flush() error {
	w.props.Flush()
	if err := w.props.Error(); err != nil {
		return fmt.Errorf("flushing property csv: %w", err)
	}
	w.vals.Flush()
	if err := w.vals.Error(); err != nil {
		return fmt.Errorf("flushing valuation csv: %w", err)
	}
	return nil
}
