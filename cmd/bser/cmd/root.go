package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"bser/cli"
	"bser/cmd/bser/cmd/archive"
	"bser/config"
	"bser/log"
)

var rootCmd = &cobra.Command{
	Use:   "bser",
	Short: "Binary serialization archive tool",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.CalledAs() == "init" || cmd.CalledAs() == "version" {
			return nil
		}
		homeDir := cli.GetHomeDir(cmd)
		if err := config.EnsureHomeDir(homeDir); err != nil {
			return errors.Wrap(err, "error ensuring home directory")
		}
		cfg, err := cli.GetConfig(cmd)
		if err != nil {
			return errors.Wrap(err, "error reading config")
		}
		logLevel, err := log.NewLevel(cfg.LogLevel)
		if err != nil {
			return errors.Wrap(err, "error parsing log level")
		}
		log.SetLevel(logLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String(cli.FlagHome, "~/.bser", "Home directory for the tool's config and database.")
	archive.AddCmd(rootCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
