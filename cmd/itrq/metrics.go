package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"itrq/internal/storage"
)

var (
	metricsFormat string
	metricsDays   int
	metricsRecent int
	metricsTool   string
)

// MetricsResponseCLI is the metrics command's response shape.
type MetricsResponseCLI struct {
	Period     string                  `json:"period"`
	Since      string                  `json:"since"`
	Aggregates []storage.ToolAggregate `json:"aggregates"`
}

// RecentCallsResponseCLI is the response shape for --recent.
type RecentCallsResponseCLI struct {
	Limit int                `json:"limit"`
	Tool  string             `json:"tool,omitempty"`
	Calls []storage.ToolCall `json:"calls"`
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show MCP tool-call metrics",
	Long: `Display per-tool call counts, error rates, and latencies recorded
by the MCP server.

Examples:
  itrq metrics                       # last 7 days
  itrq metrics --days=30
  itrq metrics --format=json
  itrq metrics --recent=10           # last 10 individual calls
  itrq metrics --recent=10 --tool=search`,
	Run: runMetrics,
}

func init() {
	metricsCmd.Flags().StringVar(&metricsFormat, "format", "human", "Output format (json, human)")
	metricsCmd.Flags().IntVar(&metricsDays, "days", 7, "Number of days to include (1-90)")
	metricsCmd.Flags().IntVar(&metricsRecent, "recent", 0, "List the N most recent calls instead of aggregates")
	metricsCmd.Flags().StringVar(&metricsTool, "tool", "", "Filter --recent output to one tool")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) {
	_, logger, err := getConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := storage.Open(root, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening metrics database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if metricsRecent > 0 {
		calls, err := db.RecentToolCalls(metricsRecent, metricsTool)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading metrics: %v\n", err)
			os.Exit(1)
		}

		response := &RecentCallsResponseCLI{
			Limit: metricsRecent,
			Tool:  metricsTool,
			Calls: calls,
		}
		output, err := FormatResponse(response, OutputFormat(metricsFormat))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(output)
		return
	}

	if metricsDays < 1 {
		metricsDays = 1
	}
	if metricsDays > 90 {
		metricsDays = 90
	}

	since := time.Now().AddDate(0, 0, -metricsDays)
	aggregates, err := db.ToolAggregates(since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading metrics: %v\n", err)
		os.Exit(1)
	}

	response := &MetricsResponseCLI{
		Period:     fmt.Sprintf("last %d days", metricsDays),
		Since:      since.Format("2006-01-02"),
		Aggregates: aggregates,
	}

	output, err := FormatResponse(response, OutputFormat(metricsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
