package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/spf13/cobra"

	"github.com/emersion/go-contacts"
	"github.com/emersion/go-contacts/filter"
	"github.com/emersion/go-contacts/sortorder"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		filterStr    string
		removed      []string
		removedSince string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "query [file...]",
		Short: "Filter, sort and project vCards",
		Long: `Read vCards from the given files (or standard input), keep those
matching --filter, order them by --sort and print them restricted to the
properties listed in --fields.

Cards read from --removed files are soft-deleted at the file modification
time: only ID and removed-since filters can match them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var recs []*contacts.AddressObject
			if len(args) == 0 {
				l, err := readAddressObjects(cmd.InOrStdin(), "-", time.Time{})
				if err != nil {
					return err
				}
				recs = l
			}
			for _, path := range args {
				l, err := readFile(path, false)
				if err != nil {
					return err
				}
				recs = append(recs, l...)
			}
			for _, path := range removed {
				l, err := readFile(path, true)
				if err != nil {
					return err
				}
				recs = append(recs, l...)
			}

			n := a.filters.Decode(filterStr)
			if !filter.IsValid(n) {
				return fmt.Errorf("contactquery: invalid filter: %v", filter.String(n))
			}
			if removedSince != "" {
				t, err := parseTime(removedSince)
				if err != nil {
					return err
				}
				if filter.IsEmpty(n) {
					n = filter.RemovedSince(t)
				} else {
					n = filter.Intersection{filter.RemovedSince(t), n}
				}
			}
			a.logger.Debug("running query", "filter", filter.String(n), "records", len(recs))

			recs = filter.Filter(n, recs)
			spec := a.sorts.Decode(a.cfg.Sort)
			sortorder.Sort(recs, sortorder.NewComparator(spec, a.lang))
			if limit > 0 && len(recs) > limit {
				recs = recs[:limit]
			}

			hint := a.hints.Decode(a.cfg.Fields)
			enc := vcard.NewEncoder(cmd.OutOrStdout())
			for _, rec := range recs {
				if err := enc.Encode(a.hints.Project(hint, rec.Card)); err != nil {
					return fmt.Errorf("contactquery: failed to encode %v: %w", rec.ID(), err)
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filterStr, "filter", "", "filter wire string")
	flags.String("sort", "", "sort clauses, e.g. \"LAST_NAME ASC, FIRST_NAME\"")
	flags.String("fields", "", "fetch hint, e.g. \"FIELDS:N,TEL\"")
	flags.StringSliceVar(&removed, "removed", nil, "file holding soft-deleted vCards")
	flags.StringVar(&removedSince, "removed-since", "", "only keep cards removed at or after this time")
	flags.IntVar(&limit, "limit", 0, "maximum number of cards to print")
	a.bind(cmd, "sort", "sort")
	a.bind(cmd, "fields", "fields")
	return cmd
}

func readFile(path string, removed bool) ([]*contacts.AddressObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("contactquery: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("contactquery: %w", err)
	}

	var removedAt time.Time
	if removed {
		removedAt = fi.ModTime().UTC()
	}
	l, err := readAddressObjects(f, path, removedAt)
	if err != nil {
		return nil, err
	}
	for _, ao := range l {
		ao.ModTime = fi.ModTime()
	}
	return l, nil
}

func readAddressObjects(r io.Reader, path string, removed time.Time) ([]*contacts.AddressObject, error) {
	dec := vcard.NewDecoder(r)
	var l []*contacts.AddressObject
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("contactquery: failed to decode %v: %w", path, err)
		}
		l = append(l, &contacts.AddressObject{
			Path:    fmt.Sprintf("%v#%d", path, len(l)),
			Card:    card,
			Removed: removed,
		})
	}
	return l, nil
}
