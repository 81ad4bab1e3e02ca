// internal/cli/output.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"nil-matching/internal/models"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, "":
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// readJSON decodes a JSON file into out.
func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeMatch(w io.Writer, format string, m models.MatchResult) error {
	if format == formatJSON {
		return writeJSON(w, m)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	rows := [][]string{
		{"Athlete", label(m.SubjectName, m.SubjectID)},
		{"Brand", m.BrandID},
		{"Score", score(m.TotalScore)},
		{"Tier", string(m.Tier)},
		{"Method", string(m.ScoringMethod)},
		{"Audience fit", score(m.Breakdown.AudienceFit)},
		{"Content fit", score(m.Breakdown.ContentFit)},
		{"Engagement quality", score(m.Breakdown.EngagementQuality)},
		{"Values alignment", score(m.Breakdown.ValuesAlignment)},
	}
	if m.CampaignID != "" {
		rows = append(rows, []string{"Campaign", m.CampaignID})
	}
	if m.Breakdown.LLMScore != nil {
		rows = append(rows, []string{"LLM score", score(*m.Breakdown.LLMScore)})
	}
	if m.IsExcluded {
		rows = append(rows, []string{"Excluded", m.ExclusionReason})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, r := range m.MatchReasons {
		fmt.Fprintf(w, "  + [%s] %s\n", r.Category, r.Text)
	}
	for _, c := range m.Concerns {
		fmt.Fprintf(w, "  - [%s] %s\n", c.Category, c.Text)
	}
	if m.LLMSummary != "" {
		fmt.Fprintf(w, "\n%s\n", m.LLMSummary)
	}
	return nil
}

func writeRanking(w io.Writer, format string, result models.RankResult) error {
	if format == formatJSON {
		return writeJSON(w, result)
	}
	if len(result.Matches) == 0 && len(result.Excluded) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Athlete", "Sport", "School", "Followers", "Engagement", "Score", "Tier")
	for i, m := range result.Matches {
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			label(m.SubjectName, m.SubjectID),
			string(m.SubjectSport),
			m.SubjectSchool,
			strconv.Itoa(m.SubjectFollowers),
			strconv.FormatFloat(m.SubjectEngagementRate, 'f', 1, 64) + "%",
			score(m.TotalScore),
			string(m.Tier),
		}); err != nil {
			return err
		}
	}
	for _, m := range result.Excluded {
		if err := table.Append([]string{
			"-",
			label(m.SubjectName, m.SubjectID),
			string(m.SubjectSport),
			m.SubjectSchool,
			strconv.Itoa(m.SubjectFollowers),
			strconv.FormatFloat(m.SubjectEngagementRate, 'f', 1, 64) + "%",
			score(m.TotalScore),
			"EXCLUDED",
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d of %d candidates matched, average score %s\n",
		len(result.Matches), result.TotalCandidates, score(result.AvgScore))
	return nil
}

func label(name, id string) string {
	if name == "" {
		return id
	}
	return name + " (" + id + ")"
}

func score(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
