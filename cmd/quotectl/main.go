// Command quotectl administers the quote records from a shell: listing,
// exporting and clearing them without going through the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/twl-tooling/quotedesk/internal/config"
	"github.com/twl-tooling/quotedesk/internal/quote/service"
	"github.com/twl-tooling/quotedesk/internal/quote/store"
)

// openReviewFunc opens the configured record slot and returns the review
// workflow over it plus a function releasing the slot.
type openReviewFunc func(ctx context.Context) (*service.ReviewService, func() error, error)

func main() {
	if err := newRootCmd(openFromEnv).Execute(); err != nil {
		os.Exit(1)
	}
}

func openFromEnv(ctx context.Context) (*service.ReviewService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.SetLogLoggerLevel(cfg.LogLevel)

	slot, closeSlot, err := store.OpenSlot(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open record slot: %w", err)
	}
	return service.NewReviewService(store.NewSlotStore(slot), nil), closeSlot, nil
}

func newRootCmd(open openReviewFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Administer supplier quote records",
		Long:          `Lists, exports and clears the quote records in the slot selected by SLOT_BACKEND.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newListCmd(open),
		newExportCmd(open),
		newClearCmd(open),
		newCategoriesCmd(),
		newHashPasswordCmd(),
	)
	return root
}

// withReview runs fn against an opened review workflow and closes the slot afterwards
func withReview(cmd *cobra.Command, open openReviewFunc, fn func(ctx context.Context, review *service.ReviewService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	review, closeSlot, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSlot(); err != nil {
			slog.Error("failed to close record slot", "error", err)
		}
	}()
	return fn(ctx, review)
}
