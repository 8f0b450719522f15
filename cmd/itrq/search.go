package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	searchFormat string
	searchScope  string
)

var searchCmd = &cobra.Command{
	Use:   "search [pattern]",
	Short: "Find subsystems or systems by pattern",
	Long: `Search subsystem or system identifiers and descriptions with a
case-insensitive substring pattern. With no pattern, lists everything
that is available.

Examples:
  itrq search                      # list all subsystems
  itrq search 7-1100               # subsystems matching 7-1100
  itrq search pump --scope=system  # systems matching "pump"`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchFormat, "format", "human", "Output format (json, human)")
	searchCmd.Flags().StringVar(&searchScope, "scope", "subsystem", "Search scope (subsystem, system)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	_, _, engine, _ := mustGetEnv()

	pattern := ""
	if len(args) > 0 {
		pattern = args[0]
	}

	var result interface{}
	var err error
	switch searchScope {
	case "subsystem":
		result, err = engine.SearchSubsystems(pattern)
	case "system":
		result, err = engine.SearchSystems(pattern)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown scope %q (valid: subsystem, system)\n", searchScope)
		os.Exit(1)
	}
	if err != nil {
		exitWithError(err, OutputFormat(searchFormat))
	}

	output, err := FormatResponse(result, OutputFormat(searchFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
