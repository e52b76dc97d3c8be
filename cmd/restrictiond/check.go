package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"turn-restrictions/internal/timedomain"
)

func newCheckCmd() *cobra.Command {
	var (
		at     string
		offset int
	)
	cmd := &cobra.Command{
		Use:     "check EXPRESSION",
		Short:   "Parse a time domain and report whether it is active at an instant",
		Example: `  restrictiond check "[(t2t3t4t5t6h7m0){h2}]" --at 2024-05-08T12:30:00Z --offset -300`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				when = t
			}
			d, err := timedomain.Parse(args[0], offset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s: active=%t\n", d, when.Format(time.RFC3339), d.IsActiveAt(when))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "instant to evaluate, RFC 3339 (default now)")
	cmd.Flags().IntVar(&offset, "offset", 0, "zone offset of the expression in minutes east of UTC")
	return cmd
}
