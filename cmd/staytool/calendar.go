package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"coastalstay/internal/app/dto"
	propertyapp "coastalstay/internal/app/handlers/properties"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/domain/shared/daterange"
)

func calendarCmd(root *rootOptions) *cobra.Command {
	var role, other string
	cmd := &cobra.Command{
		Use:   "calendar <property> <YYYY-MM>",
		Short: "Show which days a date picker would offer",
		Long: `Prints the month as the visitor date picker sees it:

  .  selectable
  x  booked
  -  disabled (past, before check-in, or blocked by the other date)
  !  free but a stay from the chosen check-in would cross a booking`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buses, err := root.buses(cmd)
			if err != nil {
				return err
			}
			month, err := queries.Ask[propertyapp.CalendarQuery, dto.CalendarMonth](cmd.Context(), buses.Queries, propertyapp.CalendarQuery{
				Ref:   args[0],
				Month: args[1],
				Role:  role,
				Other: other,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderMonth(month))
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "check_in", "picker side: check_in or check_out")
	cmd.Flags().StringVar(&other, "other", "", "date already chosen on the other side")
	return cmd
}

func renderMonth(month dto.CalendarMonth) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s (%s)\n", month.PropertyID, month.Month, month.Role)
	b.WriteString("Mo  Tu  We  Th  Fr  Sa  Su\n")
	if len(month.Days) == 0 {
		return b.String()
	}
	first := weekdayIndex(month.Days[0].Date)
	b.WriteString(strings.Repeat("    ", first))
	for i, day := range month.Days {
		fmt.Fprintf(&b, "%s%s", day.Date[8:], dayMark(day))
		if (first+i+1)%7 == 0 || i == len(month.Days)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func dayMark(day dto.CalendarDay) string {
	switch {
	case day.Booked:
		return "x"
	case day.Disabled:
		return "-"
	case day.UnavailableForRange:
		return "!"
	default:
		return "."
	}
}

// weekdayIndex counts from Monday.
func weekdayIndex(raw string) int {
	day, err := daterange.ParseDate(raw)
	if err != nil {
		return 0
	}
	return (int(day.Weekday()) + 6) % 7
}
