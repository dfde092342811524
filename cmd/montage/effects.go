package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/montage/internal/elements"
	"github.com/five82/montage/internal/transition"
)

func newEffectsCmd() *cobra.Command {
	var types bool

	cmd := &cobra.Command{
		Use:   "effects",
		Short: "List the registered transition effects",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			names := transition.DefaultRegistry().Names()
			if types {
				names = elements.DefaultRegistry().Types()
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
	cmd.Flags().BoolVar(&types, "types", false, "List element types instead")
	return cmd
}
