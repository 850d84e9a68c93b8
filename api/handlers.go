package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stellarlinkco/bias-bench/internal/dataset"
	"github.com/stellarlinkco/bias-bench/internal/task"
)

type taskInfo struct {
	Name        string `json:"name"`
	Subset      string `json:"subset"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
}

type taskDetail struct {
	taskInfo
	Examples   int             `json:"examples"`
	Sampled    bool            `json:"sampled,omitempty"`
	Categories []categoryCount `json:"categories,omitempty"`
}

type categoryCount struct {
	Category string `json:"category"`
	Examples int    `json:"examples"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks := task.All()
	out := make([]taskInfo, 0, len(tasks))
	for _, tk := range tasks {
		out = append(out, taskInfo{
			Name:        tk.Name,
			Subset:      string(tk.Subset),
			Category:    string(tk.Category),
			Description: tk.Description,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetTask(c *gin.Context) {
	if s == nil || s.loader == nil {
		respondError(c, http.StatusInternalServerError, errors.New("task loader not configured"))
		return
	}

	tk, err := task.Find(c.Param("name"))
	if err != nil {
		respondError(c, http.StatusNotFound, err)
		return
	}

	slice, err := s.loader.Load(c.Request.Context(), tk)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	byCategory := make(map[dataset.Category]int)
	for _, ex := range slice.Examples {
		byCategory[ex.Category]++
	}
	var counts []categoryCount
	for _, cat := range dataset.Categories() {
		if n := byCategory[cat]; n > 0 {
			counts = append(counts, categoryCount{Category: string(cat), Examples: n})
		}
	}

	c.JSON(http.StatusOK, taskDetail{
		taskInfo: taskInfo{
			Name:        tk.Name,
			Subset:      string(tk.Subset),
			Category:    string(tk.Category),
			Description: tk.Description,
		},
		Examples:   len(slice.Examples),
		Sampled:    slice.Sampled,
		Categories: counts,
	})
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
