package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"itrq/internal/errors"
)

var queryFormat string

var queryCmd = &cobra.Command{
	Use:   "query <subsystem-id>",
	Short: "Show comprehensive ITR status for a subsystem",
	Long: `Show the full ITR status breakdown for one subsystem: overall counts,
per-type breakdown (ITR-A/B/C), completion rate, and next-action guidance.

Examples:
  itrq query 7-1100-P-01-05
  itrq query 7-1100-P-01-05 --format=json`,
	Args: cobra.ExactArgs(1),
	Run:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	_, _, engine, _ := mustGetEnv()

	report, err := engine.QuerySubsystem(args[0])
	if err != nil {
		exitWithError(err, OutputFormat(queryFormat))
	}

	output, err := FormatResponse(report, OutputFormat(queryFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

// exitWithError prints a coded error with its guidance and exits non-zero.
func exitWithError(err error, format OutputFormat) {
	ie := errors.AsItrError(err)
	if format == FormatJSON {
		output, fErr := formatJSON(ie)
		if fErr == nil {
			fmt.Fprintln(os.Stderr, output)
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", ie.Message)
	if ie.Guidance != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", ie.Guidance)
	}
	os.Exit(1)
}
