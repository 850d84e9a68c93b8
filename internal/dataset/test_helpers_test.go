package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
)

func writeJSONLFile(t *testing.T, path string, lines []any) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i, line := range lines {
		if err := enc.Encode(line); err != nil {
			t.Fatalf("encode line %d: %v", i, err)
		}
	}
}

// canonicalCrowsRows builds a synthetic table matching the published
// crowspairs total and split.
func canonicalCrowsRows() []any {
	rows := make([]any, 0, CrowsPairsTotal)
	n := 0
	for _, c := range Categories() {
		for i := 0; i < crowsPairsSplit[c]; i++ {
			n++
			rows = append(rows, map[string]any{
				"id":                         fmt.Sprintf("cp-%03d", n),
				"category":                   string(c),
				"sentence_stereotypical":     fmt.Sprintf("stereo sentence %d", n),
				"sentence_antistereotypical": fmt.Sprintf("anti sentence %d", n),
			})
		}
	}
	return rows
}

// canonicalStereoRows builds a synthetic table matching the published
// stereoset total; the category distribution is arbitrary.
func canonicalStereoRows() []any {
	rows := make([]any, 0, StereoSetTotal)
	cats := Categories()
	for i := 0; i < StereoSetTotal; i++ {
		rows = append(rows, map[string]any{
			"id":                         fmt.Sprintf("ss-%03d", i+1),
			"category":                   string(cats[i%len(cats)]),
			"sentence_stereotypical":     fmt.Sprintf("stereo sentence %d", i+1),
			"sentence_antistereotypical": fmt.Sprintf("anti sentence %d", i+1),
		})
	}
	return rows
}

type errAfterNContext struct {
	context.Context
	okCalls int
	err     error
	calls   int
}

func (c *errAfterNContext) Err() error {
	c.calls++
	if c.calls <= c.okCalls {
		return nil
	}
	return c.err
}
