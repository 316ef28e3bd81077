package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	propertyapp "coastalstay/internal/app/handlers/properties"
	"coastalstay/internal/app/queries"
)

func quoteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "quote <property> <check-in> <check-out>",
		Short:   "Price a stay night by night",
		Example: "  staytool quote villa-unawatuna 2026-12-28 2027-01-02",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			buses, err := root.buses(cmd)
			if err != nil {
				return err
			}
			res, err := queries.Ask[propertyapp.QuoteQuery, propertyapp.QuoteResult](cmd.Context(), buses.Queries, propertyapp.QuoteQuery{
				Ref:      args[0],
				CheckIn:  args[1],
				CheckOut: args[2],
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tPRICE\tRULE")
			for _, night := range res.Breakdown {
				rule := "-"
				if night.IsSpecialPrice {
					rule = night.RuleID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", night.Date, night.Formatted, rule)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d nights, total %s, average %s/night\n", res.Nights, res.FormattedTotalPrice, res.FormattedAvgPrice)
			if !res.Available {
				fmt.Fprintf(out, "unavailable: overlaps booking %s\n", res.Conflict)
			}
			return nil
		},
	}
}
