// cmd/tools/listing-tool/online.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"realty-workers/internal/common/config"
	"realty-workers/internal/common/database"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/models"
	"realty-workers/internal/store"
	"realty-workers/pkg/seed"
)

// listingStore is the slice of *store.Store the online commands use.
type listingStore interface {
	CreateListing(ctx context.Context, l *models.Listing) (*models.Listing, error)
	ListListings(ctx context.Context) ([]models.Listing, error)
	ReindexAll(ctx context.Context) (int, error)
	SearchEnabled() bool
}

// openStore connects to the configured store. Replaced in tests.
var openStore = func(ctx context.Context, opts *rootOptions) (listingStore, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewStructured(cfg.Logging.Level, "console")

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("postgres unreachable: %w", err)
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	closers := []func() error{pg.Close}

	var cache redis.Cmdable
	if rdb, err := database.NewRedis(cfg.Database.Redis); err == nil && rdb.Ping(ctx) == nil {
		cache = rdb.Cache()
		closers = append(closers, rdb.Close)
	}

	var es *database.ElasticsearchClient
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		if c, err := database.NewElasticsearch(cfg.Database.Elasticsearch); err == nil && c.Ping() == nil {
			if err := c.EnsureIndex(ctx, cfg.Database.Elasticsearch.ListingIndex, database.ListingIndexMapping); err != nil {
				log.Warn("listing index unavailable", map[string]interface{}{"error": err.Error()})
			} else {
				es = c
			}
		}
	}

	opt := store.Options{
		SnapshotLimit: cfg.Listings.SnapshotLimit,
		CacheTTL:      cfg.Listings.CacheTTLDuration(),
		ListingIndex:  cfg.Database.Elasticsearch.ListingIndex,
	}
	var st *store.Store
	if es != nil {
		st = store.New(pg.DB, cache, es.Client, opt, log)
	} else {
		st = store.New(pg.DB, cache, nil, opt, log)
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}
	return st, closeAll, nil
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFromFile(opts.configPath)
	}
	return config.Load()
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var (
		dryRun  bool
		reindex bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a seed file and create its listings in the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load seed file: %w", err)
			}
			if problems := seed.Validate(f); len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "#%d %s %s: %s\n", p.Index, p.ID, p.Field, p.Message)
				}
				return fmt.Errorf("seed file has %d problem(s), nothing imported", len(problems))
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d listing(s) would be imported.\n", len(f.Listings))
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			st, closeStore, err := openStore(ctx, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			for i := range f.Listings {
				created, err := st.CreateListing(ctx, &f.Listings[i])
				if err != nil {
					return fmt.Errorf("listing #%d (%s): %w", i, f.Listings[i].Title, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s\n", created.ID, created.Title)
			}

			if reindex && st.SearchEnabled() {
				n, err := st.ReindexAll(ctx)
				if err != nil {
					return fmt.Errorf("reindex failed after %d listing(s): %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d listing(s)\n", n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d listing(s).\n", len(f.Listings))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only")
	cmd.Flags().BoolVar(&reindex, "reindex", true, "Mirror the snapshot into the search index afterwards")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall deadline")
	return cmd
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current listing snapshot to a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			st, closeStore, err := openStore(ctx, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			listings, err := st.ListListings(ctx)
			if err != nil {
				return err
			}
			f := &seed.File{
				Version:    "1",
				ExportedAt: time.Now().UTC().Format(time.RFC3339),
				Listings:   listings,
			}

			if output == "" {
				return writeJSON(cmd.OutOrStdout(), f)
			}
			if err := seed.Save(f, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d listing(s) to %s\n", len(listings), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (stdout when empty)")
	return cmd
}

func newReindexCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Mirror the listing snapshot into Elasticsearch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			st, closeStore, err := openStore(ctx, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			if !st.SearchEnabled() {
				return fmt.Errorf("no search index configured")
			}
			n, err := st.ReindexAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reindexed %d listing(s).\n", n)
			return nil
		},
	}
}
