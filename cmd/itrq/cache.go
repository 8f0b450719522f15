package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheFormat string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or refresh the dataset cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache existence, age, and validity",
	Run:   runCacheStatus,
}

var cacheReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Delete the cache and reload from the source file",
	Run:   runCacheReload,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheFormat, "format", "human", "Output format (json, human)")
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheReloadCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) {
	_, proc, _, _ := mustGetEnv()

	output, err := FormatResponse(proc.CacheStatus(), OutputFormat(cacheFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func runCacheReload(cmd *cobra.Command, args []string) {
	_, proc, _, _ := mustGetEnv()

	result := proc.Reload()
	output, err := FormatResponse(result, OutputFormat(cacheFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	if !result.Success {
		os.Exit(1)
	}
}
