// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/opa-api/internal/store"
	"github.com/pdiddy/opa-api/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Index saved OPA responses into SQLite and query them",
	Long: `Store reads the raw responses saved by scrape, flattens each successful
one and upserts it into a SQLite database with its valuation history.
Re-running is safe: accounts are replaced, not duplicated.

With --account the database is queried instead and the property with its
valuations is printed as JSON.`,
	Args: cobra.NoArgs,
	RunE: runStore,
}

func init() {
	storeCmd.Flags().String("save-dir", types.DefaultSaveDir, "directory of raw responses to ingest")
	storeCmd.Flags().String("db", types.DefaultDBPath, "SQLite database file")
	storeCmd.Flags().String("account", "", "print one indexed account instead of ingesting")
	bindFlag(storeCmd, "store.save_dir", "save-dir")
	bindFlag(storeCmd, "store.db_path", "db")

	rootCmd.AddCommand(storeCmd)
}

type accountView struct {
	Property   *types.Property   `json:"property"`
	Valuations []types.Valuation `json:"valuations"`
}

func runStore(cmd *cobra.Command, args []string) error {
	cfg := types.StoreConfig{
		DBPath:  viper.GetString("store.db_path"),
		SaveDir: viper.GetString("store.save_dir"),
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	account, _ := cmd.Flags().GetString("account")
	if account != "" {
		p, err := st.Property(ctx, account)
		if err != nil {
			return err
		}
		vals, err := st.Valuations(ctx, account)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(accountView{Property: p, Valuations: vals})
	}

	summary, err := st.Ingest(ctx, cfg.SaveDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}
