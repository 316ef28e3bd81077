package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"coastalstay/internal/domain/pricing"
	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/infra/fixtures"
)

var errFixturesInvalid = errors.New("fixtures file has invalid properties")

func checkCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate every property in the fixtures file",
		Long: `Runs the admin API validation over each fixture: slugs, guest limits,
overlapping pricing rules and overlapping bookings. Exits non-zero when any
property fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clock, err := root.clock()
			if err != nil {
				return err
			}
			items, err := fixtures.Load(root.fixtures)
			if err != nil {
				return err
			}
			now := clock()
			today := daterange.DateOf(now)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tPRICE\tBOOKINGS\tNOTE")
			failed := 0
			ids := map[string]bool{}
			slugs := map[string]string{}
			for _, fx := range items {
				property, err := fx.Build(now)
				switch {
				case err != nil:
				case ids[fx.ID]:
					err = errors.New("duplicate id")
				case slugs[property.Slug] != "":
					err = fmt.Errorf("slug %q already used by %s", property.Slug, slugs[property.Slug])
				}
				if err != nil {
					failed++
					fmt.Fprintf(w, "%s\tFAIL\t-\t-\t%s\n", fx.ID, strings.TrimSpace(err.Error()))
					continue
				}
				ids[fx.ID] = true
				slugs[property.Slug] = fx.ID
				note := "draft"
				if property.Active {
					note = "published"
				}
				if next := pricing.NextSpecialPricing(property.Pricing, today); next != nil {
					note += fmt.Sprintf(", next rate %s from %s", next.ID, next.StartDate)
				}
				fmt.Fprintf(w, "%s\tok\t%s\t%d\t%s\n", fx.ID, pricing.PriceDisplay(property.Pricing), len(property.Bookings), note)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errFixturesInvalid, failed, len(items))
			}
			return nil
		},
	}
}
