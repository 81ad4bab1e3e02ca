// internal/cli/index.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"nil-matching/internal/acquisition"
	"nil-matching/internal/common/database"
	"nil-matching/internal/common/metrics"
	"nil-matching/internal/models"
)

type indexFlags struct {
	max   int
	batch int
	sport string
}

func newIndexCommand(opts *rootOptions) *cobra.Command {
	f := &indexFlags{}
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Copy athlete profiles from the profile source into the search index",
		Long: `Copy athlete profiles from the configured profile source into the
Elasticsearch athlete index used by search-candidates and rank-candidates.

Examples:
  match-cli index --config configs/config.yaml
  match-cli index --sport FOOTBALL --max 2000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, opts, f)
		},
	}
	cmd.Flags().IntVar(&f.max, "max", 1000, "maximum profiles to index")
	cmd.Flags().IntVar(&f.batch, "batch", 200, "documents per bulk request")
	cmd.Flags().StringVar(&f.sport, "sport", "", "only index athletes in this sport")
	return cmd
}

func runIndex(cmd *cobra.Command, opts *rootOptions, f *indexFlags) error {
	ctx := cmd.Context()
	log := opts.logger()

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	clients, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer clients.Close()
	if clients.Elasticsearch == nil {
		return errors.New("database.elasticsearch is not configured")
	}

	var cache redis.Cmdable
	if clients.Redis != nil {
		cache = clients.Redis.Client
	}
	source, err := acquisition.NewSource(cfg.Acquisition, clients.Postgres, cache, log, metrics.Recorder{})
	if err != nil {
		return err
	}

	var filters models.MatchFilters
	if f.sport != "" {
		sport, ok := models.LookupSport(f.sport)
		if !ok {
			return fmt.Errorf("unknown sport %q", f.sport)
		}
		filters.Sports = []models.Sport{sport}
	}

	profiles, err := acquisition.ListAll(ctx, source, acquisition.QueryFromFilters(filters), cfg.Acquisition.PageSize, f.max)
	if err != nil {
		return err
	}
	views := acquisition.SubjectViews(profiles)

	search := acquisition.NewCandidateSearch(clients.Elasticsearch.Client, cfg.Database.Elasticsearch.AthleteIndex)
	indexed, err := indexInBatches(ctx, search, views, f.batch, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d athletes into %s\n", indexed, len(views), search.Index())
	return nil
}

type bulkIndexer interface {
	IndexSubjects(ctx context.Context, views []models.SubjectView) (int, error)
}

// indexInBatches sends views in chunks of batch and reports progress to
// progress. A failing batch stops the run.
func indexInBatches(ctx context.Context, idx bulkIndexer, views []models.SubjectView, batch int, progress io.Writer) (int, error) {
	if batch <= 0 {
		batch = len(views)
	}
	total := 0
	for start := 0; start < len(views); start += batch {
		end := start + batch
		if end > len(views) {
			end = len(views)
		}
		n, err := idx.IndexSubjects(ctx, views[start:end])
		total += n
		if err != nil {
			return total, err
		}
		fmt.Fprintf(progress, "batch %d-%d: %d accepted\n", start+1, end, n)
	}
	return total, nil
}
