// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Default file locations. The tolist paths are fixed by the source data
// layout; the scrape defaults chain off the tolist output.
const (
	DefaultAddressesFile = "0_Addresses.json"
	DefaultIDListFile    = "opaid_list.json"
	DefaultServiceURL    = "http://services.phila.gov/OPA/v1.0/account"
	DefaultSaveDir       = "opa-downloads"
	DefaultPropertyCSV   = "opa.csv"
	DefaultValuationCSV  = "opa-val.csv"
	DefaultDBPath        = "opa.db"
	DefaultUserAgent     = "opa-api/0.1"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on 429 and 5xx responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ToListConfig holds the input and output paths of the id extraction stage.
type ToListConfig struct {
	// Input is the address feature document (default 0_Addresses.json).
	Input string `json:"input" yaml:"input"`

	// Output is where the integer id list is written (default opaid_list.json).
	Output string `json:"output" yaml:"output"`
}

// DefaultToListConfig returns the fixed paths the extraction stage uses
// when invoked without arguments.
func DefaultToListConfig() ToListConfig {
	return ToListConfig{
		Input:  DefaultAddressesFile,
		Output: DefaultIDListFile,
	}
}

// ScrapeConfig holds settings for the OPA account scraper.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// IDsFile is the JSON array of account ids to fetch.
	IDsFile string `json:"ids_file" yaml:"ids_file"`

	// ServiceURL is the OPA account endpoint; ids are appended as a path segment.
	ServiceURL string `json:"service_url" yaml:"service_url"`

	// Concurrency is the number of fetch workers (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// SaveDir receives one raw response file per id plus summary.yaml.
	SaveDir string `json:"save_dir" yaml:"save_dir"`

	// PropertyCSV and ValuationCSV are the flattened outputs.
	PropertyCSV  string `json:"csv" yaml:"csv"`
	ValuationCSV string `json:"valuations_csv" yaml:"valuations_csv"`

	// Refetch forces a request even when a saved response exists.
	Refetch bool `json:"refetch" yaml:"refetch"`
}

// StoreConfig holds settings for the SQLite index of scraped records.
type StoreConfig struct {
	// DBPath is the SQLite database file (default opa.db).
	DBPath string `json:"db_path" yaml:"db_path"`

	// SaveDir is the scrape download directory to ingest.
	SaveDir string `json:"save_dir" yaml:"save_dir"`
}
