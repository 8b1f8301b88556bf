package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "loom",
		Short: "Run named dataflow-engine demonstrations and benchmarks",
		Long: `loom is a CLI for exploring the frame/system dataflow engine through
named end-to-end demonstrations and a simple throughput benchmark.`,
		Version: version,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available scenarios:")
		fmt.Println()
		for _, s := range scenarios() {
			fmt.Printf("  %-14s %s\n", s.name, s.description)
		}
	},
}
