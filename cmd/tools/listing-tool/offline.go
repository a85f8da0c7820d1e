// cmd/tools/listing-tool/offline.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"realty-workers/internal/listing"
	"realty-workers/internal/models"
	"realty-workers/pkg/seed"
)

func newQueryCommand(opts *rootOptions) *cobra.Command {
	var (
		params   string
		pageSize int
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Filter, sort and page a seed file like the public listing page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load seed file: %w", err)
			}
			values, err := url.ParseQuery(params)
			if err != nil {
				return fmt.Errorf("invalid --params: %w", err)
			}
			if pageSize <= 0 || pageSize > listing.MaxPageSize {
				return fmt.Errorf("--page-size must be between 1 and %d", listing.MaxPageSize)
			}

			p := listing.ParseValues(values)
			ordered := listing.Truncate(listing.Sort(listing.Filter(f.Listings, p.Filter), p.Sort), limit)
			items, total := listing.Paginate(ordered, p.PageIndex, pageSize)
			return writeResult(cmd.OutOrStdout(), opts.format, listing.Result{Items: items, Total: total})
		},
	}

	cmd.Example = `  listing-tool query listings.yaml --params "city=서울&sort=price_asc"
  listing-tool query listings.json --params "transaction_type=monthly&page=2" --page-size 5`

	cmd.Flags().StringVar(&params, "params", "", "Query string as the public list page takes it")
	cmd.Flags().IntVar(&pageSize, "page-size", 12, "Listings per page")
	cmd.Flags().IntVar(&limit, "limit", listing.ResultLimit, "Sorted listings kept before paging, 0 keeps all")
	return cmd
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a seed file for listings the store would reject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load seed file: %w", err)
			}

			problems := seed.Validate(f)
			out := cmd.OutOrStdout()
			if opts.format == "json" {
				if err := writeJSON(out, problems); err != nil {
					return err
				}
			} else {
				for _, p := range problems {
					fmt.Fprintf(out, "#%d %s %s: %s\n", p.Index, p.ID, p.Field, p.Message)
				}
			}

			if len(problems) > 0 {
				return fmt.Errorf("%d problem(s) in %d listing(s)", len(problems), len(f.Listings))
			}
			if opts.format != "json" {
				fmt.Fprintf(out, "%d listing(s) valid.\n", len(f.Listings))
			}
			return nil
		},
	}
}

func writeResult(w io.Writer, format string, res listing.Result) error {
	if format == "json" {
		return writeJSON(w, res)
	}
	return writeTable(w, res.Items, fmt.Sprintf("%d listing(s) matched", res.Total))
}

func writeTable(w io.Writer, items []models.Listing, footer string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tDEAL\tPRICE\tAREA\tSTATUS")
	for _, l := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID,
			l.Title,
			models.PropertyTypeLabels[l.PropertyType],
			models.TransactionTypeLabels[l.TransactionType],
			listing.FormatDisplayPrice(l),
			listing.FormatArea(l.AreaSquareMeters),
			models.ListingStatusLabels[l.Status],
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, footer)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
