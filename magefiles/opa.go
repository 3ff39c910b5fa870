//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/opa-api/internal/tolist"
	"github.com/pdiddy/opa-api/pkg/types"
)

var binPath = filepath.Join(binDir, binName)

// ToList writes opaid_list.json from 0_Addresses.json in the current directory.
func ToList() error {
	n, err := tolist.Run(types.DefaultToListConfig())
	if err != nil {
		return err
	}
	fmt.Printf("[tolist] wrote %d ids to %s\n", n, types.DefaultIDListFile)
	return nil
}

// Scrape fetches every id in opaid_list.json. Set CONCURRENCY to change
// the worker count (default 4).
func Scrape() error {
	mg.Deps(Build)
	workers := 4
	if v := os.Getenv("CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CONCURRENCY %q: %w", v, err)
		}
		workers = n
	}
	return sh.RunV(binPath, "scrape", "-f", types.DefaultIDListFile, "-c", strconv.Itoa(workers))
}

// Index loads the saved scrape responses into opa.db.
func Index() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "store", "--save-dir", types.DefaultSaveDir, "--db", types.DefaultDBPath)
}
