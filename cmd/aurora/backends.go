package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/aurora"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List registered backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range aurora.Backends() {
			status := "available"
			b, err := aurora.LookupBackend(name)
			if err != nil {
				status = "unavailable: " + err.Error()
			} else {
				closeBackend(b)
			}
			fmt.Fprintf(out, "%-10s %s\n", name, status)
		}
		def := aurora.DefaultBackend()
		fmt.Fprintf(out, "default: %s\n", def.Name())
		closeBackend(def)
		return nil
	},
}
