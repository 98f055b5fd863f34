package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/viktsys/polycli/models"
)

type StatsSource interface {
	Stats(ctx context.Context, ticker string, since time.Time) (*models.BarStats, error)
}

type QueryParams struct {
	Ticker string `form:"ticker" binding:"required"`
	From   string `form:"from"`
}

type Handler struct {
	source StatsSource
	now    func() time.Time
}

func NewHandler(source StatsSource) *Handler {
	return &Handler{source: source, now: time.Now}
}

func (h *Handler) GetBarStats(c *gin.Context) {
	var params QueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var since time.Time
	var err error

	if params.From != "" {
		since, err = time.Parse("2006-01-02", params.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
	} else {
		// Default to 7 days before yesterday
		since = h.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -8)
	}

	ticker := strings.ToUpper(params.Ticker)
	stats, err := h.source.Stats(c.Request.Context(), ticker, since)
	if err != nil {
		slog.Error("Stats query failed", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func SetupRoutes(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/bars/stats", h.GetBarStats)

	return r
}
