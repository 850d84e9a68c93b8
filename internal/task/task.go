package task

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stellarlinkco/bias-bench/internal/dataset"
)

// Task names one runnable slice of the benchmark: a whole subset or one
// category of it.
type Task struct {
	Name        string
	Description string
	Subset      dataset.Subset
	Category    dataset.Category // empty for whole-subset tasks
}

// categorySlugs maps each category to the suffix used in task names.
var categorySlugs = map[dataset.Category]string{
	dataset.CategoryAttitudesBeliefs:        "attitudes_beliefs",
	dataset.CategoryPersonalityTraits:       "personality_traits",
	dataset.CategoryPhysicalCharacteristics: "physical_characteristics",
	dataset.CategoryRolesBehaviors:          "roles_behaviors",
}

// All returns every task in canonical order: each subset task followed by its
// category tasks.
func All() []Task {
	out := make([]Task, 0, 2*(1+len(dataset.Categories())))
	for _, subset := range []dataset.Subset{dataset.SubsetCrowsPairs, dataset.SubsetStereoSet} {
		out = append(out, Task{
			Name:        "bmne_" + string(subset),
			Description: fmt.Sprintf("All %s gender bias sentence pairs", subset),
			Subset:      subset,
		})
		for _, c := range dataset.Categories() {
			out = append(out, Task{
				Name:        fmt.Sprintf("bmne_%s_%s", subset, categorySlugs[c]),
				Description: fmt.Sprintf("%s pairs in the %s category", subset, c),
				Subset:      subset,
				Category:    c,
			})
		}
	}
	return out
}

// Names returns every task name in canonical order.
func Names() []string {
	all := All()
	out := make([]string, len(all))
	for i, tk := range all {
		out[i] = tk.Name
	}
	return out
}

// Find resolves a task by name. Unknown names return an UnknownTaskError
// listing what is available.
func Find(name string) (Task, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for _, tk := range All() {
		if tk.Name == name {
			return tk, nil
		}
	}
	return Task{}, &UnknownTaskError{Name: name, Available: Names()}
}

// UnknownTaskError reports a task name that is not registered.
type UnknownTaskError struct {
	Name      string
	Available []string
}

func (e *UnknownTaskError) Error() string {
	if e == nil {
		return "task: unknown task <nil>"
	}
	avail := append([]string(nil), e.Available...)
	sort.Strings(avail)
	return fmt.Sprintf("task: unknown task %q (available: %s)", e.Name, strings.Join(avail, ", "))
}
