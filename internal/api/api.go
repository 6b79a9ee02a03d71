// Package api serves the collected snapshots over http and lets an operator
// trigger collection cycles.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cryptorewards-backend/internal/collector"
	"cryptorewards-backend/internal/components/assert"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/history"
	"cryptorewards-backend/internal/rewards"
	"cryptorewards-backend/internal/sources"
	"cryptorewards-backend/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	report_api_list    = "api.list"
	report_api_get     = "api.get"
	report_api_update  = "api.update"
	report_api_history = "api.history"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

const apiKeyHeader = "X-API-Key"

// SnapshotReader is the read side of the snapshot store.
type SnapshotReader interface {
	List() ([]rewards.ExchangeSnapshot, error)
	Get(id string) (rewards.ExchangeSnapshot, error)
}

// Runner runs collection cycles on demand.
type Runner interface {
	RunNow(ctx context.Context, id string) (map[string]bool, error)
	Status() collector.Status
}

// HistoryReader reads the run history.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]collector.RunRecord, error)
	ForSource(ctx context.Context, source string, limit int) ([]collector.RunRecord, error)
	Stats(ctx context.Context) ([]history.SourceStats, error)
}

type Deps struct {
	Snapshots SnapshotReader
	Runner    Runner
	// History is optional, the history routes answer 404 without it.
	History HistoryReader
	// APIKey guards the update route, when empty every update is rejected.
	APIKey string
	Tel    telemetry.API
}

type Handler struct {
	snapshots SnapshotReader
	runner    Runner
	history   HistoryReader
	apiKey    string
	started   time.Time
	tel       telemetry.API
}

// SetupRoutes registers every route on r.
func SetupRoutes(r *gin.RouterGroup, deps Deps) *Handler {
	assert.NotNil(deps.Snapshots, "snapshots")
	assert.NotNil(deps.Runner, "runner")
	assert.NotNil(deps.Tel, "telemetry")

	handler := &Handler{
		snapshots: deps.Snapshots,
		runner:    deps.Runner,
		history:   deps.History,
		apiKey:    deps.APIKey,
		started:   time.Now(),
		tel:       telemetry.NewScopedAPI("api", deps.Tel),
	}

	api := r.Group("/api")
	{
		api.GET("/rewards", handler.ListRewards)
		api.GET("/rewards/:platform", handler.GetRewards)
		api.POST("/update", handler.requireAPIKey, handler.Update)
		api.GET("/history", handler.requireHistory, handler.History)
		api.GET("/history/stats", handler.requireHistory, handler.HistoryStats)
	}
	r.GET("/health", handler.Health)
	return handler
}

// NewRouter creates a gin engine with every route registered.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	SetupRoutes(&r.RouterGroup, deps)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	})
	return r
}

func (h *Handler) ListRewards(c *gin.Context) {
	snapshots, err := h.snapshots.List()
	if err != nil {
		h.tel.ReportBroken(report_api_list, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch reward data",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshots,
		"count":   len(snapshots),
	})
}

func (h *Handler) GetRewards(c *gin.Context) {
	platform := c.Param("platform")
	snapshot, err := h.snapshots.Get(platform)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Data for platform '%s' not found", platform),
		})
		return
	}
	if err != nil {
		h.tel.ReportBroken(report_api_get, err, platform)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Failed to fetch reward data for platform '%s'", platform),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshot,
	})
}

func (h *Handler) requireAPIKey(c *gin.Context) {
	given := c.GetHeader(apiKeyHeader)
	if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.apiKey)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid API key",
		})
		return
	}
	c.Next()
}

// Update runs a cycle for ?platform= or for every source, and waits for it.
func (h *Handler) Update(c *gin.Context) {
	platform := strings.ToLower(strings.TrimSpace(c.Query("platform")))

	results, err := h.runner.RunNow(c.Request.Context(), platform)
	if errors.Is(err, sources.ErrUnknownSource) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if err != nil {
		h.tel.ReportBroken(report_api_update, err, platform)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update data",
		})
		return
	}

	if platform != "" {
		ok := results[platform]
		status := "completed"
		if !ok {
			status = "failed"
		}
		c.JSON(http.StatusOK, gin.H{
			"success": ok,
			"message": fmt.Sprintf("Data update for platform '%s' %s", platform, status),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"scheduler": h.runner.Status(),
		"process":   telemetry.ReadPerfStats(),
	})
}

func (h *Handler) requireHistory(c *gin.Context) {
	if h.history == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Run history is disabled",
		})
		return
	}
	c.Next()
}

func historyLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("invalid limit '%s'", raw)
	}
	return min(limit, maxHistoryLimit), nil
}

// History lists recent source runs, ?source= narrows them to one source.
func (h *Handler) History(c *gin.Context) {
	limit, err := historyLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var runs []collector.RunRecord
	source := strings.ToLower(strings.TrimSpace(c.Query("source")))
	if source != "" {
		runs, err = h.history.ForSource(c.Request.Context(), source, limit)
	} else {
		runs, err = h.history.Recent(c.Request.Context(), limit)
	}
	if err != nil {
		h.tel.ReportBroken(report_api_history, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch run history",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    runs,
		"count":   len(runs),
	})
}

func (h *Handler) HistoryStats(c *gin.Context) {
	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		h.tel.ReportBroken(report_api_history, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch run history",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
