package main

import (
	"fmt"
	"time"

	"github.com/mafik/loom"
	"github.com/spf13/cobra"
)

var (
	benchIterations int

	benchCmd = &cobra.Command{
		Use:     "bench",
		Aliases: []string{"benchmark"},
		Short:   "Measure task-loop throughput on a simple chain",
		Long: `Builds a linear chain of frames joined by Then links and repeatedly
schedules and drains it, reporting elapsed time per iteration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(benchIterations)
		},
	}
)

func init() {
	benchCmd.Flags().IntVar(&benchIterations, "n", 10000, "number of chain runs to time")
}

func runBench(n int) error {
	log := &journal{}
	sys := loom.NewSystem()
	a := sys.Frame(newStep(log, "a"))
	b := sys.Frame(newStep(log, "b"))
	c := sys.Frame(newStep(log, "c"))
	sys.Link(loom.DirectEnd(a), loom.DirectEnd(b), loom.Then)
	sys.Link(loom.DirectEnd(b), loom.DirectEnd(c), loom.Then)

	loop := loom.NewTaskLoop()
	start := time.Now()
	for i := 0; i < n; i++ {
		a.Schedule(loop)
		loop.RunUntilDone()
	}
	elapsed := time.Since(start)

	fmt.Printf("ran %d chain iterations in %s (%s/iteration)\n", n, elapsed, elapsed/time.Duration(n))
	return nil
}
