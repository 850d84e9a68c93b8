package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stellarlinkco/bias-bench/internal/config"
)

func newRun(model, taskName string, bias, acc float64) *Run {
	return &Run{
		Model:             model,
		Provider:          "openai",
		Task:              taskName,
		Mode:              "likelihood",
		BiasScore:         bias,
		Accuracy:          acc,
		WeightedBiasScore: bias,
		Total:             186,
		Scored:            180,
		Skipped:           6,
		LatencyMs:         1200,
	}
}

func TestStore_SaveAndLeaderboardRanking(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	runs := []*Run{
		newRun("llama3-70b", "bmne_crowspairs", 80, 90),
		newRun("davinci-002", "bmne_crowspairs", 45, 40),
		newRun("gpt-4o-mini", "bmne_crowspairs", 50, 60),
		newRun("claude-sonnet-4", "bmne_crowspairs", 45, 70),
		newRun("gpt-4o-mini", "bmne_stereoset", 48, 62),
	}
	for _, r := range runs {
		if err := st.Save(ctx, r); err != nil {
			t.Fatalf("Save %s/%s: %v", r.Model, r.Task, err)
		}
		if r.ID == 0 {
			t.Fatalf("Save %s: ID not set", r.Model)
		}
	}

	got, err := st.Leaderboard(ctx, "bmne_crowspairs", 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len(runs): got %d want %d", len(got), 4)
	}

	// Nearest to 50 first; the 45s tie on distance and fall back to accuracy.
	wantOrder := []string{"gpt-4o-mini", "claude-sonnet-4", "davinci-002", "llama3-70b"}
	for i, want := range wantOrder {
		if got[i].Model != want {
			t.Fatalf("rank%d model: got %q want %q", i+1, got[i].Model, want)
		}
	}
	if got[0].BiasScore != 50 || got[0].Scored != 180 {
		t.Fatalf("rank1 fields: got bias=%.1f scored=%d", got[0].BiasScore, got[0].Scored)
	}
}

func TestStore_Leaderboard_DateBreaksFullTies(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	old := newRun("m1", "bmne_stereoset", 52, 70)
	old.EvalDate = time.UnixMilli(1000).UTC()
	recent := newRun("m2", "bmne_stereoset", 52, 70)
	recent.EvalDate = time.UnixMilli(2000).UTC()

	if err := st.Save(ctx, old); err != nil {
		t.Fatalf("Save old: %v", err)
	}
	if err := st.Save(ctx, recent); err != nil {
		t.Fatalf("Save recent: %v", err)
	}

	got, err := st.Leaderboard(ctx, "bmne_stereoset", 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(runs): got %d want %d", len(got), 2)
	}
	if got[0].Model != "m2" || got[1].Model != "m1" {
		t.Fatalf("order: got %q, %q want m2, m1", got[0].Model, got[1].Model)
	}
}

func TestStore_Leaderboard_Limit(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	for i, bias := range []float64{50, 55, 60} {
		r := newRun("m"+string(rune('a'+i)), "bmne_crowspairs", bias, 50)
		if err := st.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := st.Leaderboard(ctx, "bmne_crowspairs", 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(runs): got %d want %d", len(got), 2)
	}
	if got[0].Model != "ma" || got[1].Model != "mb" {
		t.Fatalf("order: got %q, %q want ma, mb", got[0].Model, got[1].Model)
	}
}

func TestStore_ModelHistory_Order(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	dates := []int64{1000, 3000, 2000}
	for i, ms := range dates {
		r := newRun("m1", "bmne_crowspairs", 50+float64(i), 60)
		r.EvalDate = time.UnixMilli(ms).UTC()
		if err := st.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	other := newRun("m2", "bmne_crowspairs", 55, 60)
	if err := st.Save(ctx, other); err != nil {
		t.Fatalf("Save other: %v", err)
	}

	got, err := st.ModelHistory(ctx, "m1", "bmne_crowspairs")
	if err != nil {
		t.Fatalf("ModelHistory: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(history): got %d want %d", len(got), 3)
	}
	for i, want := range []int64{3000, 2000, 1000} {
		if !got[i].EvalDate.Equal(time.UnixMilli(want).UTC()) {
			t.Fatalf("history[%d].EvalDate: got %v want %v", i, got[i].EvalDate, time.UnixMilli(want).UTC())
		}
	}
	if got[0].Mode != "likelihood" {
		t.Fatalf("history[0].Mode: got %q want %q", got[0].Mode, "likelihood")
	}
}

func TestStore_SaveValidation(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Save(ctx, nil); err == nil {
		t.Fatalf("Save(nil): expected error")
	}
	missing := newRun("", "bmne_crowspairs", 50, 50)
	if err := st.Save(ctx, missing); err == nil {
		t.Fatalf("Save without model: expected error")
	}

	trimmed := newRun("  m1  ", " bmne_crowspairs ", 50, 50)
	if err := st.Save(ctx, trimmed); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if trimmed.Model != "m1" || trimmed.Task != "bmne_crowspairs" {
		t.Fatalf("trim: got model=%q task=%q", trimmed.Model, trimmed.Task)
	}
	if trimmed.EvalDate.IsZero() {
		t.Fatalf("EvalDate not backfilled")
	}

	if _, err := st.Leaderboard(ctx, "   ", 5); err == nil {
		t.Fatalf("Leaderboard with empty task: expected error")
	}
	if _, err := st.ModelHistory(ctx, "m1", ""); err == nil {
		t.Fatalf("ModelHistory with empty task: expected error")
	}

	var nilStore *Store
	if err := nilStore.Save(ctx, newRun("m1", "t", 50, 50)); err == nil {
		t.Fatalf("nil store Save: expected error")
	}
	if err := nilStore.Close(); err != nil {
		t.Fatalf("nil store Close: %v", err)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Fatalf("Open(nil): expected error")
	}

	st, err := Open(&config.Config{Storage: config.StorageConfig{Type: "memory"}})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	defer st.Close()
	if err := st.Save(context.Background(), newRun("m1", "bmne_crowspairs", 50, 50)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(t.TempDir(), "runs", "bias.db")
	fileStore, err := Open(&config.Config{Storage: config.StorageConfig{Type: "", Path: path}})
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer fileStore.Close()

	_, err = Open(&config.Config{Storage: config.StorageConfig{Type: "postgres"}})
	if err == nil || !strings.Contains(err.Error(), "unsupported storage type") {
		t.Fatalf("Open postgres: got %v", err)
	}
}
