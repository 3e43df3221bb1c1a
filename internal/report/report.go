// Package report renders a markdown profile of a cleaning and scoring run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"leadscore/internal/leads"
	"leadscore/internal/source"
)

const topLeads = 20

var printer = message.NewPrinter(language.English)

// Input bundles what the profile describes.
type Input struct {
	Load   source.Stats
	Run    leads.Report
	Scored leads.Dataset
}

// Write renders in to path.
func Write(path string, in Input) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Build(in)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func Build(in Input) string {
	rows := in.Scored.Rows
	lines := []string{
		"# Buyer leads cleaning + scoring report",
		"",
		"## Dataset shape",
		"- Source rows read: " + fmtInt(in.Load.SourceRows),
		"- Invalid rows skipped: " + fmtInt(in.Load.InvalidRows),
		"- Rows repaired before parsing: " + fmtInt(in.Load.RepairedRows),
		"- Rows after deduplication: " + fmtInt(len(rows)),
		"- Columns: " + fmtInt(len(in.Scored.Columns)),
		"",
		"## Deduplication applied",
		"- Dropped duplicate company_name rows: " + fmtInt(in.Run.DroppedRows),
		"",
		"## Missingness (by null %)",
	}

	type miss struct {
		col string
		pct float64
	}
	var misses []miss
	for _, col := range in.Scored.Columns {
		nulls := 0
		for _, r := range rows {
			if leads.IsMissing(r[col]) {
				nulls++
			}
		}
		misses = append(misses, miss{col, safeDiv(float64(nulls)*100, float64(len(rows)))})
	}
	sort.SliceStable(misses, func(i, j int) bool {
		if misses[i].pct != misses[j].pct {
			return misses[i].pct > misses[j].pct
		}
		return misses[i].col < misses[j].col
	})
	for _, m := range misses {
		lines = append(lines, fmt.Sprintf("- `%s`: %.1f%% null", m.col, m.pct))
	}
	lines = append(lines, "")

	lines = append(lines,
		"## Signal hits (rows with evidence)",
		"- `"+leads.ColHasTargetLabel+"`: "+fmtInt(in.Run.LabelHits),
		"- `"+leads.ColIsTargetIndustry+"`: "+fmtInt(in.Run.IndustryHits),
		"- `"+leads.ColTargetIngredients+"` > 0: "+fmtInt(in.Run.IngredientHits),
		"- `"+leads.ColTargetProducts+"` > 0: "+fmtInt(in.Run.ProductHits),
		"- `"+leads.ColProductsUsingTarget+"` > 0: "+fmtInt(in.Run.UseHits),
		"",
	)

	lines = append(lines, "## Score distribution")
	scores := make([]float64, 0, len(rows))
	counts := map[int]int{}
	for _, r := range rows {
		s := leads.ScoreOf(r)
		scores = append(scores, float64(s))
		counts[s]++
	}
	if len(scores) > 0 {
		sort.Float64s(scores)
		lines = append(lines, fmt.Sprintf("- min=%s, median=%s, mean=%s, max=%s",
			fmt4g(scores[0]), fmt4g(median(scores)), fmt4g(mean(scores)), fmt4g(scores[len(scores)-1])))
		distinct := make([]int, 0, len(counts))
		for s := range counts {
			distinct = append(distinct, s)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(distinct)))
		for _, s := range distinct {
			lines = append(lines, fmt.Sprintf("- score %d: %s rows", s, fmtInt(counts[s])))
		}
	}
	lines = append(lines, "")

	lines = append(lines, "## Top leads")
	for i := 0; i < len(rows) && i < topLeads; i++ {
		r := rows[i]
		lines = append(lines, fmt.Sprintf("%d. %s (score %d)", i+1, cellText(r[leads.ColCompanyName]), leads.ScoreOf(r)))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func cellText(v any) string {
	if v == nil {
		return "<NA>"
	}
	return fmt.Sprint(v)
}

func fmtInt(v int) string { return printer.Sprintf("%d", v) }

func fmt4g(v float64) string { return fmt.Sprintf("%.4g", v) }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
