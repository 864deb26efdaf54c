package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wangtao2001/Muxify/internal/connection"
)

// connectionID is the target of every command, settable via -c.
var connectionID string

func SetVersionInfo(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
}

var rootCmd = &cobra.Command{
	Use:          "muxify",
	Short:        "Manage tmux sessions locally and over SSH",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&connectionID, "connection", "c", connection.LocalID,
		"Connection to operate on")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
