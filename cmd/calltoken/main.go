// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package main

import (
	"log"

	"github.com/aungmawjj/calltoken/node"
	"github.com/spf13/cobra"
)

const (
	flagDebug   = "debug"
	flagDataDir = "datadir"
	flagAPIPort = "apiport"
	flagMinter  = "minter"
)

var rootCmd = &cobra.Command{
	Use:   "calltoken",
	Short: "Callable token service",
	Run: func(cmd *cobra.Command, args []string) {
		debug, err := cmd.Flags().GetBool(flagDebug)
		check(err)
		datadir, err := cmd.Flags().GetString(flagDataDir)
		check(err)
		apiPort, err := cmd.Flags().GetInt(flagAPIPort)
		check(err)
		minter, err := cmd.Flags().GetString(flagMinter)
		check(err)

		node.Run(node.Config{
			Debug:   debug,
			Datadir: datadir,
			APIPort: apiPort,
			Minter:  minter,
		})
	},
}

func main() {
	check(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().Bool(flagDebug, false, "debug mode")
	rootCmd.Flags().StringP(flagDataDir, "d", "", "token data directory")
	rootCmd.MarkFlagRequired(flagDataDir)

	rootCmd.Flags().IntP(flagAPIPort, "p", node.DefaultConfig.APIPort, "api port")
	rootCmd.Flags().String(flagMinter, node.DefaultConfig.Minter, "hex encoded minter account")

	rootCmd.AddCommand(demoCmd)
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
