package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/twl-tooling/quotedesk/internal/auth"
	"github.com/twl-tooling/quotedesk/internal/catalog"
	"github.com/twl-tooling/quotedesk/internal/quote/service"
)

func newListCmd(open openReviewFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List quotes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReview(cmd, open, func(ctx context.Context, review *service.ReviewService) error {
				quotes, err := review.ListAll(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSUBMITTED\tCATEGORY\tSUPPLIER\tCOST\tSTATUS")
				for _, q := range quotes {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f %s\t%s\n",
						q.ID, q.SubmissionDate, catalog.DisplayName(q.Category),
						q.SupplierName, q.EstimatedCost, q.Currency, q.Status)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d quote(s)\n", len(quotes))
				return nil
			})
		},
	}
}

func newExportCmd(open openReviewFunc) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every quote as a JSON array",
		Long: `Writes the full record list as JSON. Without --out the file is named
twl_quotes_export_<YYYY-MM-DD>.json in the current directory; use --out - for stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReview(cmd, open, func(ctx context.Context, review *service.ReviewService) error {
				data, err := review.ExportAll(ctx)
				if err != nil {
					return err
				}

				if out == "-" {
					_, err := cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				path := out
				if path == "" {
					path = service.ExportFileName(time.Now())
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}

func newClearCmd(open openReviewFunc) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Irreversibly delete every quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear all quotes without --yes")
			}
			return withReview(cmd, open, func(ctx context.Context, review *service.ReviewService) error {
				if err := review.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "all quotes cleared")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every quote")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	var withFields bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the mold categories and their form fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, c := range catalog.Categories() {
				fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
				if !withFields {
					continue
				}
				for _, f := range catalog.EffectiveFields(c.ID) {
					required := ""
					if f.Required {
						required = " *"
					}
					fmt.Fprintf(w, "  %s (%s)%s\t%s\n", f.Key, f.Kind, required, f.Label)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withFields, "fields", false, "also list each category's fields")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
