// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the opa-api CLI.
//
// Run with no arguments, opa-api extracts the BRT_ID list from
// 0_Addresses.json into opaid_list.json. Subcommands scrape OPA account
// records for that list and index the saved responses.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the opa-api CLI.
var rootCmd = &cobra.Command{
	Use:   "opa-api",
	Short: "Extract and scrape Philadelphia OPA property records",
	Long: `opa-api works with City of Philadelphia Office of Property Assessment data.

Without a subcommand it reads 0_Addresses.json, extracts attributes.BRT_ID
from every feature and writes the integer list to opaid_list.json. The
scrape subcommand fetches each listed account from the OPA service into
CSV files, and store indexes the saved responses in SQLite.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runToList,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./opa-api.yaml or ~/.config/opa-api/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("opa-api")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "opa-api"))
		}
	}

	viper.SetEnvPrefix("OPA_API")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlag ties a command flag to a config key so that an explicit flag
// overrides the config file, which overrides the flag default.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
