// internal/cli/rank.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nil-matching/internal/matching"
	"nil-matching/internal/models"
)

type rankFlags struct {
	brand       string
	candidates  string
	filters     string
	concurrency int
	useLLM      bool
	request     models.BulkMatchRequest
}

func newRankCommand(opts *rootOptions) *cobra.Command {
	f := &rankFlags{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank candidate athletes for one brand",
		Long: `Rank candidate athletes for one brand.

--candidates is a JSON array of athlete views; --filters is an optional JSON
object with sports, conferences, minFollowers, maxFollowers,
minEngagementRate and contentTypes.

Examples:
  match-cli rank --brand brand.json --candidates athletes.json
  match-cli rank --brand brand.json --candidates athletes.json --limit 5 --sort-by engagement`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, opts, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.brand, "brand", "", "brand view JSON file")
	flags.StringVar(&f.candidates, "candidates", "", "athlete views JSON file")
	flags.StringVar(&f.filters, "filters", "", "match filters JSON file")
	flags.IntVar(&f.concurrency, "concurrency", 0, "scoring goroutines (default GOMAXPROCS)")
	flags.BoolVar(&f.useLLM, "llm", false, "blend in the qualitative assessment")
	flags.IntVar(&f.request.Limit, "limit", models.DefaultRankLimit, "maximum matches returned")
	flags.Float64Var(&f.request.MinScore, "min-score", 0, "minimum total score")
	flags.StringVar((*string)(&f.request.SortBy), "sort-by", string(models.SortByScore), "sort key (score, followers, engagement)")
	flags.StringVar((*string)(&f.request.SortOrder), "sort-order", string(models.SortDesc), "sort order (asc, desc)")
	flags.BoolVar(&f.request.IncludeExcluded, "include-excluded", false, "list excluded athletes after the matches")
	flags.StringVar(&f.request.CampaignID, "campaign-id", "", "campaign id recorded on each result")
	_ = cmd.MarkFlagRequired("brand")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func runRank(cmd *cobra.Command, opts *rootOptions, f *rankFlags) error {
	if err := checkFormat(opts.output()); err != nil {
		return err
	}

	var brand models.BrandView
	if err := readJSON(f.brand, &brand); err != nil {
		return err
	}
	var candidates []models.SubjectView
	if err := readJSON(f.candidates, &candidates); err != nil {
		return err
	}
	if f.filters != "" {
		if err := readJSON(f.filters, &f.request.Filters); err != nil {
			return err
		}
	}
	if brand.ID == "" {
		return matching.ErrMissingBrandID
	}

	rankOpts := f.request.Options()
	if err := rankOpts.Validate(); err != nil {
		return err
	}

	scorer, err := opts.engine()
	if err != nil {
		return err
	}
	ranker := matching.NewRanker(scorer, f.concurrency)

	var hooks []matching.ResultHook
	if f.useLLM {
		enhancer, err := opts.enhancer(cmd.Context(), scorer, opts.logger())
		if err != nil {
			return fmt.Errorf("qualitative stage: %w", err)
		}
		if enhancer.Enabled() {
			hooks = append(hooks, enhancer.Hook(cmd.Context()))
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "qualitative stage is not configured; ranking with rule-based scores")
		}
	}

	result := ranker.Rank(brand, candidates, rankOpts, hooks...)
	return writeRanking(cmd.OutOrStdout(), opts.output(), result)
}
