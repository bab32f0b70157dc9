package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	analysis "idea-validator-app/internal/modules/analysis/domain"
	historyDomain "idea-validator-app/internal/modules/history/domain"
)

// analyzeOutput analyze の JSON 出力
type analyzeOutput struct {
	Result    *analysis.AnalysisResult `json:"result"`
	Cached    bool                     `json:"cached"`
	HistoryID string                   `json:"historyId,omitempty"`
}

// historyGroupOutput history list の JSON 出力
type historyGroupOutput struct {
	Label string                      `json:"label"`
	Items []historyDomain.HistoryItem `json:"items"`
}

// comparisonOutput history compare の JSON 出力
type comparisonOutput struct {
	Base       historyDomain.HistoryItem `json:"base"`
	Target     historyDomain.HistoryItem `json:"target"`
	ScoreDelta int                       `json:"scoreDelta"`
}

// trendPointOutput history trend の JSON 出力
type trendPointOutput struct {
	ID        string `json:"id"`
	Idea      string `json:"idea"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"`
}

func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult 分析結果を表示
func printResult(w io.Writer, result *analysis.AnalysisResult, cached bool) {
	status := ""
	if cached {
		status = "  (cached)"
	}
	fmt.Fprintf(w, "Validation score: %d/100%s\n", result.ValidationScore, status)
	fmt.Fprintf(w, "%s\n", result.ScoreRationale)

	fmt.Fprintf(w, "\nRed flags (%d):%s\n", len(result.RedFlags), severityCounts(result))
	if len(result.RedFlags) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, flag := range result.RedFlags {
		fmt.Fprintf(w, "  [%s] %s: %s\n", flag.Severity, flag.Category, flag.Title)
		fmt.Fprintf(w, "      %s\n", flag.Description)
		fmt.Fprintf(w, "      Next step: %s\n", flag.Suggestion)
	}

	fmt.Fprintln(w, "\nRisk matrix:")
	printMatrix(w, analysis.NewRiskMatrix(result.RedFlags))

	fmt.Fprintln(w, "\nSummary:")
	for _, line := range strings.Split(strings.TrimSpace(result.Summary), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// severityCounts 深刻度ごとのフラグ数（例: " High 2, Medium 0, Low 1"）
func severityCounts(result *analysis.AnalysisResult) string {
	if len(result.RedFlags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(analysis.Severities))
	for _, sev := range analysis.Severities {
		parts = append(parts, fmt.Sprintf("%s %d", sev, result.FlagsBySeverity(sev)))
	}
	return " " + strings.Join(parts, ", ")
}

// printMatrix カテゴリ×深刻度の表
func printMatrix(w io.Writer, matrix analysis.RiskMatrix) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "  Category")
	for _, sev := range analysis.Severities {
		fmt.Fprintf(tw, "\t%s", sev)
	}
	fmt.Fprintln(tw)
	for _, cat := range analysis.RiskCategories {
		fmt.Fprintf(tw, "  %s", cat)
		for _, sev := range analysis.Severities {
			fmt.Fprintf(tw, "\t%d", matrix.Count(cat, sev))
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

// printGroups 日付ごとの履歴一覧
func printGroups(w io.Writer, groups []historyDomain.HistoryGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\n", group.Label)
		for _, item := range group.Items {
			marker := " "
			if item.IsSaved {
				marker = "*"
			}
			fmt.Fprintf(tw, "  %s %s\t%d\t%s\t%s\n",
				marker, item.ID, item.Result.ValidationScore,
				item.Timestamp.Format(time.Kitchen), truncate(item.Idea, 60))
		}
	}
	_ = tw.Flush()
}

// printComparison 2件の比較
func printComparison(w io.Writer, cmp *historyDomain.Comparison) {
	fmt.Fprintf(w, "Base:   %s (%d)\n", truncate(cmp.Base.Idea, 60), cmp.Base.Result.ValidationScore)
	fmt.Fprintf(w, "Target: %s (%d)\n", truncate(cmp.Target.Idea, 60), cmp.Target.Result.ValidationScore)
	fmt.Fprintf(w, "Score delta: %+d\n", cmp.ScoreDelta)

	fmt.Fprintln(w, "\nRisk matrix (base -> target):")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "  Category")
	for _, sev := range analysis.Severities {
		fmt.Fprintf(tw, "\t%s", sev)
	}
	fmt.Fprintln(tw)
	for _, cat := range analysis.RiskCategories {
		fmt.Fprintf(tw, "  %s", cat)
		for _, sev := range analysis.Severities {
			fmt.Fprintf(tw, "\t%d -> %d", cmp.BaseMatrix.Count(cat, sev), cmp.TargetMatrix.Count(cat, sev))
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

// printTrend スコア推移を古い順に棒グラフで表示
func printTrend(w io.Writer, points []historyDomain.TrendPoint) {
	if len(points) < 2 {
		fmt.Fprintln(w, "Analyze more ideas to see a trend.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range points {
		fmt.Fprintf(tw, "  %s\t%3d\t%s\t%s\n",
			p.Timestamp.Local().Format("Jan 2 15:04"), p.Score,
			strings.Repeat("#", p.Score/5), truncate(p.Idea, 40))
	}
	_ = tw.Flush()

	delta := points[len(points)-1].Score - points[0].Score
	fmt.Fprintf(w, "\nChange since first analysis: %+d\n", delta)
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func groupsOutput(groups []historyDomain.HistoryGroup) []historyGroupOutput {
	out := make([]historyGroupOutput, 0, len(groups))
	for _, group := range groups {
		out = append(out, historyGroupOutput{Label: group.Label, Items: group.Items})
	}
	return out
}

func trendOutput(points []historyDomain.TrendPoint) []trendPointOutput {
	out := make([]trendPointOutput, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointOutput{
			ID:        p.ID,
			Idea:      p.Idea,
			Score:     p.Score,
			Timestamp: p.Timestamp.UnixMilli(),
		})
	}
	return out
}
