// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/opa-api/internal/tolist"
	"github.com/pdiddy/opa-api/pkg/types"
)

var tolistCmd = &cobra.Command{
	Use:   "tolist",
	Short: "Extract BRT_ID values from an address feature file",
	Long: `Tolist reads an address feature document, parses attributes.BRT_ID of
every feature as an integer and writes the ids, in feature order, as a
compact JSON array. The output file is replaced atomically; on failure an
existing output is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runToList,
}

func init() {
	tolistCmd.Flags().String("input", types.DefaultAddressesFile, "address feature document")
	tolistCmd.Flags().String("output", types.DefaultIDListFile, "id list output file")
	bindFlag(tolistCmd, "tolist.input", "input")
	bindFlag(tolistCmd, "tolist.output", "output")

	rootCmd.AddCommand(tolistCmd)
}

func runToList(cmd *cobra.Command, args []string) error {
	cfg := types.ToListConfig{
		Input:  viper.GetString("tolist.input"),
		Output: viper.GetString("tolist.output"),
	}

	n, err := tolist.Run(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d ids to %s\n", n, cfg.Output)
	return nil
}
