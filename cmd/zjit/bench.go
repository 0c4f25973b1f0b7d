package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBenchCommand(opts *rootOptions) *cobra.Command {
	var goroutines, iterations int
	cmd := &cobra.Command{
		Use:   "bench [demo ...]",
		Short: "run demo chains from many goroutines against one cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if goroutines < 1 || iterations < 1 {
				return errors.New("goroutines and iterations must be positive")
			}
			if len(args) == 0 {
				args = demoNames()
			}
			var selected []demo
			for _, name := range args {
				d, err := lookupDemo(name)
				if err != nil {
					return err
				}
				selected = append(selected, d)
			}
			e, err := opts.engine(cmd, nil)
			if err != nil {
				return err
			}
			start := time.Now()
			var g errgroup.Group
			for k := 0; k < goroutines; k++ {
				g.Go(func() error {
					for i := 0; i < iterations; i++ {
						for _, d := range selected {
							e.Execute(d.build(e.Catalog()))
						}
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			elapsed := time.Since(start)
			runs := goroutines * iterations * len(selected)
			s := e.Cache().Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d runs in %s (%s/run)\n", runs, elapsed, elapsed/time.Duration(runs))
			fmt.Fprintf(out, "shapes %d, compilations %d, interpreted %d\n", e.Cache().Len(), s.Compilations, s.Fallbacks)
			fmt.Fprintf(out, "hits %d, misses %d, waits %d\n", s.Hits, s.Misses, s.Waits)
			return nil
		},
	}
	cmd.Flags().IntVarP(&goroutines, "goroutines", "n", 8, "number of concurrent goroutines")
	cmd.Flags().IntVarP(&iterations, "iterations", "i", 1000, "runs of each demo per goroutine")
	return cmd
}
