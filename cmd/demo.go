package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	demoAll bool

	demoCmd = &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Run one or all named scenarios and print the resulting log",
		Long: `Run a named scenario and print the execution-order log it produces.

Without an argument, prints the menu. With --all, runs every scenario in
turn.`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var completions []string
			for _, s := range scenarios() {
				if strings.HasPrefix(s.name, toComplete) {
					completions = append(completions, s.name)
				}
			}
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if demoAll {
				for _, s := range scenarios() {
					runScenario(s)
				}
				return nil
			}
			if len(args) == 0 {
				listCmd.Run(cmd, args)
				return nil
			}
			s, ok := findScenario(args[0])
			if !ok {
				return fmt.Errorf("unknown scenario %q (see `loom list`)", args[0])
			}
			runScenario(s)
			return nil
		},
	}
)

func init() {
	demoCmd.Flags().BoolVar(&demoAll, "all", false, "run every scenario in turn")
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios() {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

func runScenario(s scenario) {
	fmt.Printf("%-14s %s\n", s.name, s.run())
}
