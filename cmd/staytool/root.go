package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"coastalstay/internal/app/bootstrap"
	"coastalstay/internal/domain/shared/daterange"
	"coastalstay/internal/infra/fixtures"
	"coastalstay/internal/infra/storage/memory"
)

type rootOptions struct {
	fixtures string
	today    string
	drafts   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "staytool",
		Short: "Verify property rates and availability from a fixtures file",
		Long: `staytool loads a JSON or YAML property fixtures file into memory and runs
the quote and calendar queries against it, so rate cards can be checked
before they are imported.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.fixtures, "fixtures", "f", fixtures.DefaultPath, "fixtures file (.json, .yaml)")
	cmd.PersistentFlags().StringVar(&opts.today, "today", "", "evaluate as of this date, YYYY-MM-DD (default: now)")
	cmd.PersistentFlags().BoolVar(&opts.drafts, "drafts", false, "include unpublished properties")

	cmd.AddCommand(quoteCmd(opts))
	cmd.AddCommand(calendarCmd(opts))
	cmd.AddCommand(checkCmd(opts))
	return cmd
}

func (o *rootOptions) clock() (func() time.Time, error) {
	if o.today == "" {
		return time.Now, nil
	}
	day, err := daterange.ParseDate(o.today)
	if err != nil {
		return nil, fmt.Errorf("--today: %w", err)
	}
	at := day.Time().Add(12 * time.Hour)
	return func() time.Time { return at }, nil
}

// buses seeds an in-memory store from the fixtures file and wires the
// regular query bus over it.
func (o *rootOptions) buses(cmd *cobra.Command) (bootstrap.Buses, error) {
	clock, err := o.clock()
	if err != nil {
		return bootstrap.Buses{}, err
	}
	items, err := fixtures.Load(o.fixtures)
	if err != nil {
		return bootstrap.Buses{}, err
	}
	if o.drafts {
		for i := range items {
			items[i].Active = true
		}
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	factory := memory.NewFactory()
	if _, err := fixtures.Seed(cmd.Context(), factory.PropertiesRepo, items, logger, clock()); err != nil {
		return bootstrap.Buses{}, err
	}
	return bootstrap.NewBuses(bootstrap.Deps{
		UoW:    factory,
		Outbox: memory.NewOutbox(nil),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clock,
	}), nil
}
