package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/c360studio/semconv/catalog"
	"github.com/c360studio/semconv/convert"
	"github.com/c360studio/semconv/elements"
	"github.com/spf13/cobra"
)

func projectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "project <shape> <guid>",
		Short: "Project a record into an element bean and print it as JSON",
		Long: `Project fetches the record rooted at guid and prints the bean for shape.

Shapes:
  database-column-type             guid of the schema type entity
  database-column                  guid of the schema attribute entity
  reference-value-assignment-item  guid of the assigned item
  foreign-key                      guid of the column; prints every foreign key`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := elements.ParseShape(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := slog.Default()
			cfg, err := loadConfig(flags.configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			return runProject(ctx, a.service, shape, args[1], cmd.OutOrStdout(), logger)
		},
	}
}

// runProject projects one bean and writes it as indented JSON. A missing
// mandatory record still prints the partial bean.
func runProject(ctx context.Context, svc *catalog.Service, shape elements.Shape, guid string, w io.Writer, logger *slog.Logger) error {
	result, err := svc.Project(ctx, shape, guid)
	if err != nil {
		if !convert.IsRecoverable(err) {
			return fmt.Errorf("project %s %s: %w", shape, guid, err)
		}
		logger.Warn("Partial projection", "shape", shape, "guid", guid, "error", err)
	}
	return writeJSON(w, result)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
