package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetLeaderboard(c *gin.Context) {
	if s == nil || s.history == nil {
		respondError(c, http.StatusInternalServerError, errors.New("history store not configured"))
		return
	}

	taskName := strings.TrimSpace(c.Query("task"))
	if taskName == "" {
		respondError(c, http.StatusBadRequest, errors.New("task is required"))
		return
	}

	limit := 20
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	runs, err := s.history.Leaderboard(c.Request.Context(), taskName, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetModelHistory(c *gin.Context) {
	if s == nil || s.history == nil {
		respondError(c, http.StatusInternalServerError, errors.New("history store not configured"))
		return
	}

	model := strings.TrimSpace(c.Query("model"))
	taskName := strings.TrimSpace(c.Query("task"))
	if model == "" || taskName == "" {
		respondError(c, http.StatusBadRequest, errors.New("model and task are required"))
		return
	}

	runs, err := s.history.ModelHistory(c.Request.Context(), model, taskName)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}
