package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/semconv/config"
	"github.com/c360studio/semconv/graph"
	"github.com/c360studio/semconv/instance"
	"github.com/c360studio/semconv/repository"
	"github.com/spf13/cobra"
)

// graphSource is the source recorded on published triples.
const graphSource = "semconv.fixtures"

func loadCmd(flags *globalFlags) *cobra.Command {
	var publishGraph bool

	cmd := &cobra.Command{
		Use:   "load [pattern...]",
		Short: "Load fixture records into the NATS KV repository",
		Long: `Load reads YAML fixture files and stores every record in the NATS KV
buckets. Without patterns the configured fixture patterns are used.

With --graph every record is also published to the knowledge graph as triples.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()
			cfg, err := loadConfig(flags.configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			patterns := cfg.FixturePatterns()
			if len(args) > 0 {
				patterns = args
			}
			records, err := repository.LoadFixtures(patterns)
			if err != nil {
				return fmt.Errorf("load fixtures: %w", err)
			}

			// The target is always the KV store; the fixtures are the source.
			kvCfg := *cfg
			kvCfg.Repository.Backend = config.BackendNATS
			a, err := newApp(ctx, &kvCfg, logger)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			var pub graph.StreamPublisher
			if publishGraph {
				pub = a.natsClient
			}
			n, err := storeRecords(ctx, records, a.writer, pub, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d records\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&publishGraph, "graph", false, "Also publish records to the knowledge graph")
	return cmd
}

// storeRecords writes every record and, when pub is set, publishes it to
// the graph. It stops at the first failure and returns how many records
// were stored.
func storeRecords(ctx context.Context, records []*instance.Record, w repository.Writer, pub graph.StreamPublisher, logger *slog.Logger) (int, error) {
	stored := 0
	for _, r := range records {
		if err := w.Put(ctx, r); err != nil {
			return stored, fmt.Errorf("store %s: %w", repository.KeyOf(r), err)
		}
		stored++

		if pub != nil {
			if err := graph.PublishRecord(ctx, pub, r, graphSource); err != nil {
				return stored, err
			}
		}
		logger.Debug("Stored record", "key", repository.KeyOf(r).String(), "type", r.Type.Name)
	}
	return stored, nil
}
