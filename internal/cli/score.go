// internal/cli/score.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nil-matching/internal/models"
	"nil-matching/internal/qualitative"
)

type scoreFlags struct {
	athlete    string
	brand      string
	campaignID string
	useLLM     bool
}

func newScoreCommand(opts *rootOptions) *cobra.Command {
	f := &scoreFlags{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one athlete against one brand",
		Long: `Score one athlete against one brand.

Both inputs are JSON files holding the flattened athlete and brand views.

Examples:
  match-cli score --athlete athlete.json --brand brand.json
  match-cli score --athlete athlete.json --brand brand.json --llm -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, opts, f)
		},
	}
	cmd.Flags().StringVar(&f.athlete, "athlete", "", "athlete view JSON file")
	cmd.Flags().StringVar(&f.brand, "brand", "", "brand view JSON file")
	cmd.Flags().StringVar(&f.campaignID, "campaign-id", "", "campaign id recorded on the result")
	cmd.Flags().BoolVar(&f.useLLM, "llm", false, "blend in the qualitative assessment")
	_ = cmd.MarkFlagRequired("athlete")
	_ = cmd.MarkFlagRequired("brand")
	return cmd
}

func runScore(cmd *cobra.Command, opts *rootOptions, f *scoreFlags) error {
	if err := checkFormat(opts.output()); err != nil {
		return err
	}

	var subject models.SubjectView
	if err := readJSON(f.athlete, &subject); err != nil {
		return err
	}
	var brand models.BrandView
	if err := readJSON(f.brand, &brand); err != nil {
		return err
	}

	scorer, err := opts.engine()
	if err != nil {
		return err
	}
	if err := scorer.Validate(subject, brand); err != nil {
		return err
	}

	result := scorer.Score(subject, brand, f.campaignID)

	if f.useLLM {
		log := opts.logger()
		enhancer, err := opts.enhancer(cmd.Context(), scorer, log)
		if err != nil {
			return fmt.Errorf("qualitative stage: %w", err)
		}
		enhanced, err := enhancer.Enhance(cmd.Context(), subject, brand, result)
		result = enhanced
		if err != nil && !errors.Is(err, qualitative.ErrNotConfigured) {
			fmt.Fprintf(cmd.ErrOrStderr(), "qualitative assessment skipped: %v\n", err)
		}
	}

	return writeMatch(cmd.OutOrStdout(), opts.output(), result)
}
