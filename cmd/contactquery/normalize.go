package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSortCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Work with sort clauses",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "normalize CLAUSES",
		Short: "Print the canonical form of sort clauses, dropping invalid ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := a.sorts.Decode(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), a.sorts.Encode(spec))
			return nil
		},
	})
	return cmd
}

func newHintCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hint",
		Short: "Work with fetch hints",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "normalize HINT",
		Short: "Print the canonical form of a fetch hint, dropping unknown fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := a.hints.Decode(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), a.hints.Encode(h))
			return nil
		},
	})
	return cmd
}
