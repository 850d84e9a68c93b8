package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// source describes where a subset's rows come from and what a canonical
// load must contain.
type source struct {
	subset      Subset
	envVar      string
	defaultPath string
	total       int
	split       map[Category]int // nil when the per-category split is unpublished
	sample      func() []Example
}

func sourceFor(subset Subset) (*source, error) {
	switch subset {
	case SubsetCrowsPairs:
		return crowsPairsSource(), nil
	case SubsetStereoSet:
		return stereoSetSource(), nil
	default:
		return nil, fmt.Errorf("dataset: unknown subset %q", subset)
	}
}

// Load reads the table for a subset. Path resolution is explicit path first,
// then the subset's environment variable, then the default location. When no
// file exists at the resolved path the built-in sample rows are returned with
// Sampled set; a file that exists but fails the integrity check is an error.
func Load(ctx context.Context, subset Subset, path string) (*Table, error) {
	src, err := sourceFor(subset)
	if err != nil {
		return nil, err
	}
	return loadTable(ctx, src, path)
}

// LoadCrowsPairs loads the crowspairs subset. See Load for path resolution.
func LoadCrowsPairs(ctx context.Context, path string) (*Table, error) {
	return loadTable(ctx, crowsPairsSource(), path)
}

// LoadStereoSet loads the stereoset subset. See Load for path resolution.
func LoadStereoSet(ctx context.Context, path string) (*Table, error) {
	return loadTable(ctx, stereoSetSource(), path)
}

func loadTable(ctx context.Context, src *source, path string) (*Table, error) {
	if path == "" {
		path = os.Getenv(src.envVar)
	}
	if path == "" {
		path = src.defaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t := &Table{Subset: src.subset, Examples: src.sample(), Sampled: true}
		if err := verifyTable(t, src); err != nil {
			return nil, err
		}
		return t, nil
	}

	rows, err := readJSONL[exampleRow](ctx, path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", src.subset, err)
	}

	examples := make([]Example, 0, len(rows))
	for i, row := range rows {
		ex, err := row.toExample(src.subset, i)
		if err != nil {
			return nil, err
		}
		examples = append(examples, ex)
	}

	t := &Table{Subset: src.subset, Examples: examples}
	if err := verifyTable(t, src); err != nil {
		return nil, err
	}
	return t, nil
}

// exampleRow mirrors one JSONL line. Canonical exports carry the
// sentence_stereotypical/sentence_antistereotypical names; the upstream
// sent_more/sent_less spellings are accepted as well.
type exampleRow struct {
	ID                string `json:"id,omitempty"`
	PairID            string `json:"pair_id,omitempty"`
	Category          string `json:"category"`
	Stereotypical     string `json:"sentence_stereotypical,omitempty"`
	AntiStereotypical string `json:"sentence_antistereotypical,omitempty"`
	SentMore          string `json:"sent_more,omitempty"`
	SentLess          string `json:"sent_less,omitempty"`
}

func (r exampleRow) toExample(subset Subset, idx int) (Example, error) {
	stereo := strings.TrimSpace(r.Stereotypical)
	if stereo == "" {
		stereo = strings.TrimSpace(r.SentMore)
	}
	anti := strings.TrimSpace(r.AntiStereotypical)
	if anti == "" {
		anti = strings.TrimSpace(r.SentLess)
	}
	if stereo == "" || anti == "" {
		return Example{}, fmt.Errorf("dataset: %s: row %d: missing sentence pair", subset, idx+1)
	}

	cat, ok := ParseCategory(r.Category)
	if !ok {
		return Example{}, &IntegrityError{
			Subset: subset,
			Detail: fmt.Sprintf("row %d: unknown category %q", idx+1, r.Category),
		}
	}

	id := r.ID
	if id == "" {
		id = r.PairID
	}
	if id == "" {
		id = fmt.Sprintf("%s-%d", subset, idx+1)
	}

	return Example{
		ID:                id,
		Subset:            subset,
		Category:          cat,
		Stereotypical:     stereo,
		AntiStereotypical: anti,
	}, nil
}

// verifyTable checks a loaded table against the published subset definition.
// Sampled tables only need well-formed categories, which toExample already
// guarantees; canonical tables must match the published total and, where one
// is published, the per-category split.
func verifyTable(t *Table, src *source) error {
	if t.Sampled {
		return nil
	}

	counts := t.CountByCategory()
	sum := 0
	for _, c := range Categories() {
		sum += counts[c]
	}
	if src.total > 0 && sum != src.total {
		return &IntegrityError{
			Subset: src.subset,
			Detail: fmt.Sprintf("have %d examples, published total is %d", sum, src.total),
		}
	}
	if src.split != nil {
		for _, c := range Categories() {
			if counts[c] != src.split[c] {
				return &IntegrityError{
					Subset: src.subset,
					Detail: fmt.Sprintf("category %q has %d examples, published count is %d", c, counts[c], src.split[c]),
				}
			}
		}
	}
	return nil
}

func buildSample(subset Subset, prefix string, rows []struct {
	cat    Category
	stereo string
	anti   string
}) []Example {
	out := make([]Example, len(rows))
	for i, r := range rows {
		out[i] = Example{
			ID:                fmt.Sprintf("%s-%d", prefix, i+1),
			Subset:            subset,
			Category:          r.cat,
			Stereotypical:     r.stereo,
			AntiStereotypical: r.anti,
		}
	}
	return out
}

// readJSONL parses a file of newline-delimited JSON objects into a slice of T.
// Blank lines are skipped; any malformed line aborts the load.
func readJSONL[T any](ctx context.Context, path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, line, err)
		}
		out = append(out, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}
