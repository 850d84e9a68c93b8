package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stellarlinkco/bias-bench/internal/dataset"
)

func missingDataEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BIAS_BENCH_CROWSPAIRS_PATH", filepath.Join(t.TempDir(), "missing-cp.jsonl"))
	t.Setenv("BIAS_BENCH_STEREOSET_PATH", filepath.Join(t.TempDir(), "missing-ss.jsonl"))
}

func TestLoader_Load_SubsetTask(t *testing.T) {
	missingDataEnv(t)

	tk, err := Find("bmne_crowspairs")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	l := &Loader{}
	slice, err := l.Load(context.Background(), tk)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slice.Sampled {
		t.Fatalf("expected sampled slice")
	}
	if len(slice.Examples) == 0 {
		t.Fatalf("empty slice")
	}
	if slice.Task.Name != "bmne_crowspairs" {
		t.Fatalf("task=%q", slice.Task.Name)
	}
}

func TestLoader_Load_CategoryTask(t *testing.T) {
	missingDataEnv(t)

	tk, err := Find("bmne_stereoset_roles_behaviors")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	l := &Loader{}
	slice, err := l.Load(context.Background(), tk)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, ex := range slice.Examples {
		if ex.Category != dataset.CategoryRolesBehaviors {
			t.Fatalf("%s: category=%q", ex.ID, ex.Category)
		}
		if ex.Subset != dataset.SubsetStereoSet {
			t.Fatalf("%s: subset=%q", ex.ID, ex.Subset)
		}
	}
}

func TestLoader_Load_CachesTables(t *testing.T) {
	missingDataEnv(t)

	l := &Loader{}
	whole, err := Find("bmne_crowspairs")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if _, err := l.Load(context.Background(), whole); err != nil {
		t.Fatalf("first load: %v", err)
	}

	// Point the env at a broken path; the cached table must still serve.
	t.Setenv("BIAS_BENCH_CROWSPAIRS_PATH", string([]byte{0}))
	cat, err := Find("bmne_crowspairs_roles_behaviors")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	slice, err := l.Load(context.Background(), cat)
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if len(slice.Examples) == 0 {
		t.Fatalf("empty slice")
	}
}

func TestLoader_Load_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crowspairs.jsonl")
	var sb strings.Builder
	n := 0
	for _, c := range dataset.Categories() {
		for i := 0; i < dataset.CrowsPairsSplit()[c]; i++ {
			n++
			fmt.Fprintf(&sb, `{"id":"cp-%03d","category":%q,"sentence_stereotypical":"s%d","sentence_antistereotypical":"a%d"}`+"\n", n, string(c), n, n)
		}
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := &Loader{CrowsPairsPath: path}
	tk, err := Find("bmne_crowspairs_physical_characteristics")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	slice, err := l.Load(context.Background(), tk)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if slice.Sampled {
		t.Fatalf("expected canonical slice")
	}
	if len(slice.Examples) != dataset.CrowsPairsSplit()[dataset.CategoryPhysicalCharacteristics] {
		t.Fatalf("len=%d", len(slice.Examples))
	}
}

func TestLoader_Load_Errors(t *testing.T) {
	missingDataEnv(t)

	var nilLoader *Loader
	if _, err := nilLoader.Load(context.Background(), Task{}); err == nil {
		t.Fatalf("expected error")
	}

	l := &Loader{}
	if _, err := l.Load(nil, Task{Name: "x", Subset: dataset.SubsetCrowsPairs}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := l.Load(context.Background(), Task{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBound(t *testing.T) {
	missingDataEnv(t)

	l := &Loader{}
	tk, err := Find("bmne_stereoset")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	b := l.Bind(tk)
	if b.Name() != "bmne_stereoset" {
		t.Fatalf("name=%q", b.Name())
	}
	if b.Task().Subset != dataset.SubsetStereoSet {
		t.Fatalf("task=%+v", b.Task())
	}
	slice, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(slice.Examples) == 0 {
		t.Fatalf("empty slice")
	}

	var nilBound *Bound
	if nilBound.Name() != "" {
		t.Fatalf("nil name=%q", nilBound.Name())
	}
	if _, err := nilBound.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := (&Bound{task: tk}).Load(context.Background()); err == nil || !strings.Contains(err.Error(), "nil binding") {
		t.Fatalf("err=%v", err)
	}
}
