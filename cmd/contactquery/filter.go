package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emersion/go-contacts"
	"github.com/emersion/go-contacts/filter"
	"github.com/emersion/go-contacts/internal"
)

func newFilterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Build and inspect filter wire strings",
	}

	emit := func(cmd *cobra.Command, n filter.Node) {
		fmt.Fprintln(cmd.OutOrStdout(), a.filters.Encode(n))
	}

	presence := &cobra.Command{
		Use:   "presence DETAIL",
		Short: "Match records having a detail, e.g. TEL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := contacts.DefaultRegistry().DetailType(args[0])
			if !ok {
				return fmt.Errorf("contactquery: unknown detail %q", args[0])
			}
			emit(cmd, filter.Presence(t))
			return nil
		},
	}

	var (
		contains, startsWith, endsWith, exactly bool
		caseSensitive, phone                    bool
	)
	match := &cobra.Command{
		Use:   "match FIELD VALUE",
		Short: "Match records whose field has a value, e.g. FIRST_NAME Alice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := contacts.DefaultRegistry().Field(args[0])
			if !ok {
				return fmt.Errorf("contactquery: unknown field %q", args[0])
			}
			var flags filter.MatchFlags
			for _, f := range []struct {
				set  bool
				flag filter.MatchFlags
			}{
				{contains, filter.MatchContains},
				{startsWith, filter.MatchStartsWith},
				{endsWith, filter.MatchEndsWith},
				{exactly, filter.MatchExactly},
				{caseSensitive, filter.MatchCaseSensitive},
				{phone, filter.MatchPhoneNumber},
			} {
				if f.set {
					flags |= f.flag
				}
			}
			emit(cmd, filter.FieldMatch{
				Type:  field.Type,
				Sub:   field.Sub,
				Value: args[1],
				Flags: flags,
			})
			return nil
		},
	}
	match.Flags().BoolVar(&contains, "contains", false, "match a substring")
	match.Flags().BoolVar(&startsWith, "starts-with", false, "match a prefix")
	match.Flags().BoolVar(&endsWith, "ends-with", false, "match a suffix")
	match.Flags().BoolVar(&exactly, "exactly", false, "require an exact match")
	match.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "compare case-sensitively")
	match.Flags().BoolVar(&phone, "phone", false, "compare as phone numbers")
	match.MarkFlagsMutuallyExclusive("contains", "starts-with", "ends-with", "exactly")

	ids := &cobra.Command{
		Use:   "ids ID...",
		Short: "Match records by ID, including removed ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			emit(cmd, filter.IDSet(args))
			return nil
		},
	}

	removedSince := &cobra.Command{
		Use:   "removed-since TIME",
		Short: "Match records removed at or after TIME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime(args[0])
			if err != nil {
				return err
			}
			emit(cmd, filter.RemovedSince(t))
			return nil
		},
	}

	union := &cobra.Command{
		Use:   "union FILTER...",
		Short: "Match records matching any of the filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			u := filter.Union{}
			for _, s := range args {
				u = append(u, a.filters.Decode(s))
			}
			emit(cmd, u)
			return nil
		},
	}

	intersect := &cobra.Command{
		Use:   "intersect FILTER...",
		Short: "Match records matching all of the filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := filter.Intersection{}
			for _, s := range args {
				in = append(in, a.filters.Decode(s))
			}
			emit(cmd, in)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show FILTER",
		Short: "Print a filter in readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.filters.Decode(args[0])
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, filter.String(n))
			fmt.Fprintf(w, "valid: %v\n", filter.IsValid(n))
			fmt.Fprintf(w, "empty: %v\n", filter.IsEmpty(n))
			fmt.Fprintf(w, "includes removed: %v\n", filter.IncludesRemoved(n))
			return nil
		},
	}

	cmd.AddCommand(presence, match, ids, removedSince, union, intersect, show)
	return cmd
}

// parseTime accepts RFC 3339 times as well as vCard dates and date-times.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := internal.ParseDateTime("SINCE", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("contactquery: invalid time %q", s)
	}
	return t, nil
}
