package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"turn-restrictions/internal/build"
	"turn-restrictions/internal/osm"
)

func newValidateCmd() *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Build every restriction in a YAML file and report the ones that fail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := osm.LoadFile(args[0])
			if err != nil {
				return err
			}
			b := build.New(offset)
			failed := 0
			for _, rec := range recs {
				if _, err := b.Build(rec); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", build.Reason(err), err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d restrictions, %d failed\n", len(recs), failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d restrictions failed", failed, len(recs))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "zone offset in minutes for records without their own")
	return cmd
}
