package main

import (
	"itrq/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "itrq",
	Short: "itrq - ITR status query backend",
	Long: `itrq ingests an inspection-test-record (ITR) workbook and answers
aggregate status queries about it: per-subsystem completion breakdowns,
subsystem and system search, all behind a staleness-aware disk cache
that never serves data older than the source file.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
}
