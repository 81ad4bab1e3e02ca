// internal/cli/recommend.go
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nil-matching/internal/matching"
	"nil-matching/internal/models"
)

type recommendFlags struct {
	athlete string
	brands  string
	limit   int
}

func newRecommendCommand(opts *rootOptions) *cobra.Command {
	f := &recommendFlags{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest brands for one athlete",
		Long: `Score one athlete against every brand in --brands and list the best fits.
Brands the athlete excludes are left out.

Examples:
  match-cli recommend --athlete athlete.json --brands brands.json --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, opts, f)
		},
	}
	cmd.Flags().StringVar(&f.athlete, "athlete", "", "athlete view JSON file")
	cmd.Flags().StringVar(&f.brands, "brands", "", "brand views JSON file")
	cmd.Flags().IntVar(&f.limit, "limit", 10, "maximum brands listed")
	_ = cmd.MarkFlagRequired("athlete")
	_ = cmd.MarkFlagRequired("brands")
	return cmd
}

func runRecommend(cmd *cobra.Command, opts *rootOptions, f *recommendFlags) error {
	if err := checkFormat(opts.output()); err != nil {
		return err
	}
	if f.limit < 1 || f.limit > models.MaxRankLimit {
		return fmt.Errorf("limit must be between 1 and %d", models.MaxRankLimit)
	}

	var subject models.SubjectView
	if err := readJSON(f.athlete, &subject); err != nil {
		return err
	}
	var brands []models.BrandView
	if err := readJSON(f.brands, &brands); err != nil {
		return err
	}
	if subject.ID == "" {
		return matching.ErrMissingSubjectID
	}

	scorer, err := opts.engine()
	if err != nil {
		return err
	}
	recs := matching.NewRanker(scorer, 1).RecommendBrands(subject, brands, f.limit)
	return writeRecommendations(cmd.OutOrStdout(), opts.output(), recs)
}

func writeRecommendations(w io.Writer, format string, recs []models.BrandRecommendation) error {
	if format == formatJSON {
		return writeJSON(w, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No brands to recommend.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Brand", "Category", "Score", "Tier", "Why")
	for i, r := range recs {
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			label(r.BrandName, r.BrandID),
			string(r.Category),
			score(r.FitScore),
			string(r.Tier),
			strings.Join(r.MatchReasons, "; "),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
