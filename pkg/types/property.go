// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the opa-api tools:
// stage configuration, indexed property records and scrape run summaries.
package types

import "time"

// Property is an indexed OPA property record. Fields holds every flattened
// column keyed by its qualified name (e.g. "owner_zip").
type Property struct {
	AccountNumber string            `json:"account_number" yaml:"account_number"`
	FullAddress   string            `json:"full_address" yaml:"full_address"`
	Zip           string            `json:"zip" yaml:"zip"`
	OwnerName     string            `json:"owner_name" yaml:"owner_name"`
	Fields        map[string]string `json:"fields" yaml:"fields"`
}

// Valuation is one entry of a property's valuation history.
type Valuation struct {
	AccountNumber     string            `json:"account_number" yaml:"account_number"`
	Seq               int               `json:"seq" yaml:"seq"`
	CertificationYear string            `json:"certification_year" yaml:"certification_year"`
	MarketValue       string            `json:"market_value" yaml:"market_value"`
	Fields            map[string]string `json:"fields" yaml:"fields"`
}

// RunSummary records the outcome of one scrape run. It is written next to
// the saved responses so a rerun can be compared against it.
type RunSummary struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	ServiceURL string    `json:"service_url" yaml:"service_url"`
	Started    time.Time `json:"started" yaml:"started"`
	Finished   time.Time `json:"finished" yaml:"finished"`
	Total      int       `json:"total" yaml:"total"`
	Fetched    int       `json:"fetched" yaml:"fetched"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	NotSuccess int       `json:"not_success" yaml:"not_success"`
	Failed     int       `json:"failed" yaml:"failed"`
	FailedIDs  []int     `json:"failed_ids,omitempty" yaml:"failed_ids,omitempty"`
}
