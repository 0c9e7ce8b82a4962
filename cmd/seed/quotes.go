package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AnshRaj112/watchlist-backend/internal/config"
	"github.com/AnshRaj112/watchlist-backend/internal/database"
	"github.com/AnshRaj112/watchlist-backend/internal/logging"
	"github.com/AnshRaj112/watchlist-backend/internal/models"
	"github.com/AnshRaj112/watchlist-backend/internal/services"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
	"github.com/AnshRaj112/watchlist-backend/internal/store/mongostore"
)

const defaultSeedTimeout = 30 * time.Second

type quotesOptions struct {
	file    string
	drop    bool
	timeout time.Duration
}

// quoteFile is the YAML layout: either a bare list of quotes or a document
// with a top-level "quotes" key.
type quoteFile struct {
	Quotes []*models.Quote `yaml:"quotes"`
}

// NewQuotesCmd creates the quotes subcommand.
func NewQuotesCmd() *cobra.Command {
	opts := &quotesOptions{}

	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Load quotes from a YAML file",
		Long: `Reads quotes (text and author) from a YAML file and inserts them into
the quotes collection. With --drop the existing quotes are removed first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuotes(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "quotes.yaml", "YAML file with the quotes")
	cmd.Flags().BoolVar(&opts.drop, "drop", false, "delete existing quotes before loading")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultSeedTimeout, "timeout for database operations")

	return cmd
}

func runQuotes(cmd *cobra.Command, opts *quotesOptions) error {
	quotes, err := loadQuotes(opts.file)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if cfg.StoreBackend != config.StoreMongo {
		return oops.Code("CONFIG_INVALID").Errorf("seeding requires STORE_BACKEND=%s", config.StoreMongo)
	}
	log := logging.New(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	client, db, err := database.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer func() { _ = database.Disconnect(client) }()

	return seedQuotes(ctx, cmd, mongostore.New(db).Quotes, quotes, opts.drop)
}

func seedQuotes(ctx context.Context, cmd *cobra.Command, quotes store.QuoteStore, items []*models.Quote, drop bool) error {
	n, err := services.NewQuoteService(quotes).Seed(ctx, items, drop)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "insert quotes").Wrap(err)
	}
	cmd.Printf("Loaded %d quotes (%d skipped)\n", n, len(items)-n)
	return nil
}

func loadQuotes(path string) ([]*models.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("FILE_READ_FAILED").With("path", path).Wrap(err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, oops.Code("FILE_EMPTY").With("path", path).Errorf("no quotes in %s", path)
	}

	var list []*models.Quote
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc quoteFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code("FILE_INVALID").With("path", path).Wrap(err)
	}
	if len(doc.Quotes) == 0 {
		return nil, oops.Code("FILE_EMPTY").With("path", path).Wrap(errors.New("no quotes found"))
	}
	return doc.Quotes, nil
}
