package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/stellarlinkco/bias-bench/internal/runner"
	"github.com/stellarlinkco/bias-bench/internal/task"
)

type OutputFormat string

const (
	FormatTable  OutputFormat = "table"
	FormatJSON   OutputFormat = "json"
	FormatGitHub OutputFormat = "github"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
)

func parseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table":
		return FormatTable
	case "json", "jsonl":
		return FormatJSON
	case "github", "gh":
		return FormatGitHub
	default:
		return ""
	}
}

func resolveOutputFormat(flagValue string, configValue string) (OutputFormat, error) {
	if strings.TrimSpace(flagValue) != "" {
		out := parseOutputFormat(flagValue)
		if out == "" {
			return "", fmt.Errorf("invalid --output %q (expected table|json|github)", flagValue)
		}
		return out, nil
	}

	if out := parseOutputFormat(configValue); out != "" {
		return out, nil
	}
	return FormatTable, nil
}

func FormatTaskResult(res *runner.TaskResult, format OutputFormat) string {
	switch format {
	case FormatTable:
		return formatTaskTable(res)
	case FormatJSON:
		return formatTaskJSON(res)
	case FormatGitHub:
		return formatTaskGitHub(res)
	default:
		return fmt.Sprintf("error: unknown output format %q\n", format)
	}
}

func taskScope(tk task.Task) string {
	if tk.Category == "" {
		return string(tk.Subset) + ", all categories"
	}
	return string(tk.Subset) + ", " + string(tk.Category)
}

func skippedLabel(n int) string {
	if n > 0 {
		return colorRed + strconv.Itoa(n) + colorReset
	}
	return strconv.Itoa(n)
}

func formatTaskTable(res *runner.TaskResult) string {
	if res == nil {
		return "Task: <nil>\n\n"
	}

	var buf bytes.Buffer
	s := res.Summary
	fmt.Fprintf(&buf, "Task: %s (%s)\n", res.Task.Name, taskScope(res.Task))
	fmt.Fprintf(&buf, "Model: %s mode=%s\n", res.Model, res.Mode)
	fmt.Fprintf(&buf, "Examples: total=%d scored=%d skipped=%s time_ms=%d\n",
		s.Total, s.Scored, skippedLabel(s.Skipped), res.TotalTime.Milliseconds())
	if res.Sampled {
		fmt.Fprintf(&buf, "Note: scored the built-in sample rows, not the full dataset\n")
	}
	if s.NoData {
		fmt.Fprintf(&buf, "Scores: %s\n\n", colorRed+"no scored examples"+colorReset)
		return buf.String()
	}
	fmt.Fprintf(&buf, "Scores: bias=%.1f accuracy=%.1f weighted_bias=%.1f\n",
		s.BiasScore, s.Accuracy, s.WeightedBiasScore)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSCORED\tCHOSE_STEREO\tBIAS\tACCURACY")
	for _, c := range s.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%.1f\n",
			c.Category, c.Scored, c.ChoseStereotypical, c.BiasScore, c.Accuracy)
	}
	_ = tw.Flush()
	buf.WriteByte('\n')
	return buf.String()
}

type jsonTaskResult struct {
	Task               string             `json:"task"`
	Subset             string             `json:"subset"`
	Category           string             `json:"category,omitempty"`
	Model              string             `json:"model"`
	Mode               string             `json:"mode"`
	Sampled            bool               `json:"sampled,omitempty"`
	NoData             bool               `json:"no_data,omitempty"`
	Total              int                `json:"total"`
	Scored             int                `json:"scored"`
	Skipped            int                `json:"skipped"`
	ChoseStereotypical int                `json:"chose_stereotypical"`
	BiasScore          float64            `json:"bias_score"`
	Accuracy           float64            `json:"accuracy"`
	WeightedBiasScore  float64            `json:"weighted_bias_score"`
	TimeMs             int64              `json:"time_ms"`
	Categories         []jsonCategoryLine `json:"categories,omitempty"`
	Examples           []jsonExampleLine  `json:"examples,omitempty"`
}

type jsonCategoryLine struct {
	Category           string  `json:"category"`
	Scored             int     `json:"scored"`
	ChoseStereotypical int     `json:"chose_stereotypical"`
	Correct            int     `json:"correct"`
	BiasScore          float64 `json:"bias_score"`
	Accuracy           float64 `json:"accuracy"`
}

type jsonExampleLine struct {
	ID                 string `json:"id"`
	Category           string `json:"category"`
	ChoseStereotypical bool   `json:"chose_stereotypical,omitempty"`
	Correct            bool   `json:"correct,omitempty"`
	Skipped            bool   `json:"skipped,omitempty"`
	Reason             string `json:"reason,omitempty"`
	LatencyMs          int64  `json:"latency_ms"`
}

func taskResultToJSON(res *runner.TaskResult) jsonTaskResult {
	s := res.Summary
	out := jsonTaskResult{
		Task:               res.Task.Name,
		Subset:             string(res.Task.Subset),
		Category:           string(res.Task.Category),
		Model:              res.Model,
		Mode:               string(res.Mode),
		Sampled:            res.Sampled,
		NoData:             s.NoData,
		Total:              s.Total,
		Scored:             s.Scored,
		Skipped:            s.Skipped,
		ChoseStereotypical: s.ChoseStereotypical,
		BiasScore:          s.BiasScore,
		Accuracy:           s.Accuracy,
		WeightedBiasScore:  s.WeightedBiasScore,
		TimeMs:             res.TotalTime.Milliseconds(),
		Categories:         make([]jsonCategoryLine, 0, len(s.Categories)),
		Examples:           make([]jsonExampleLine, 0, len(res.Examples)),
	}

	for _, c := range s.Categories {
		out.Categories = append(out.Categories, jsonCategoryLine{
			Category:           string(c.Category),
			Scored:             c.Scored,
			ChoseStereotypical: c.ChoseStereotypical,
			Correct:            c.Correct,
			BiasScore:          c.BiasScore,
			Accuracy:           c.Accuracy,
		})
	}

	for _, ex := range res.Examples {
		line := jsonExampleLine{
			ID:        ex.ExampleID,
			Category:  string(ex.Category),
			Skipped:   ex.Skipped,
			Reason:    ex.Reason,
			LatencyMs: ex.Latency.Milliseconds(),
		}
		if ex.Outcome != nil {
			line.ChoseStereotypical = ex.Outcome.ChoseStereotypical
			line.Correct = ex.Outcome.Correct
		}
		out.Examples = append(out.Examples, line)
	}

	return out
}

func formatTaskJSON(res *runner.TaskResult) string {
	if res == nil {
		return "{\"error\":\"nil task result\"}\n"
	}

	out := taskResultToJSON(res)

	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("{\"error\":%q}\n", err.Error())
	}
	return string(b) + "\n"
}

func formatTaskGitHub(res *runner.TaskResult) string {
	if res == nil {
		return "::error::nil task result\n"
	}

	var buf strings.Builder
	s := res.Summary
	switch {
	case s.NoData:
		msg := fmt.Sprintf("task=%s model=%s no scored examples (skipped=%d)", res.Task.Name, res.Model, s.Skipped)
		buf.WriteString("::warning::")
		buf.WriteString(sanitizeGitHubAnnotation(msg))
		buf.WriteByte('\n')
	case s.Skipped > 0:
		msg := fmt.Sprintf("task=%s skipped=%d of %d examples", res.Task.Name, s.Skipped, s.Total)
		buf.WriteString("::warning::")
		buf.WriteString(sanitizeGitHubAnnotation(msg))
		buf.WriteByte('\n')
	}

	buf.WriteString(fmt.Sprintf("Summary: task=%s model=%s mode=%s bias_score=%.1f accuracy=%.1f weighted_bias=%.1f scored=%d skipped=%d\n",
		res.Task.Name, res.Model, res.Mode, s.BiasScore, s.Accuracy, s.WeightedBiasScore, s.Scored, s.Skipped))
	return buf.String()
}

func sanitizeGitHubAnnotation(s string) string {
	// GitHub Actions commands treat CR/LF and percent-encoding specially.
	// Keep it simple: flatten newlines and carriage returns.
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
