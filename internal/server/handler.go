package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dyike/CortexBrief/internal/briefing"
	"github.com/dyike/CortexBrief/internal/service"
	"github.com/dyike/CortexBrief/internal/sources"
	"github.com/dyike/CortexBrief/internal/summary"
	"github.com/dyike/CortexBrief/internal/watchlist"
)

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type briefingResponse struct {
	RunID     string             `json:"run_id"`
	Date      string             `json:"date"`
	Note      string             `json:"note,omitempty"`
	Text      string             `json:"text"`
	Fragments []sources.Fragment `json:"fragments"`
	Portfolio watchlist.Result   `json:"portfolio"`
}

type missionResponse struct {
	RunID     string `json:"run_id"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// Handler serves the briefing endpoints. Summarizer and Mission are optional:
// without them /briefing skips the note and /missions is not routed.
type Handler struct {
	Generator  service.Generator
	Summarizer summary.Summarizer
	Mission    MissionRunner
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)
	e.GET("/briefing", h.briefing)
	e.GET("/briefing/raw", h.raw)
	if h.Mission != nil {
		e.POST("/missions", h.runMission)
	}
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (h *Handler) briefing(c echo.Context) error {
	ctx := c.Request().Context()
	report := h.Generator.Generate(ctx)

	resp := newBriefingResponse(report)
	if h.Summarizer != nil && c.QueryParam("note") != "false" {
		resp.Note = h.Summarizer.Summarize(ctx, report.Text)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) raw(c echo.Context) error {
	report := h.Generator.Generate(c.Request().Context())
	return c.String(http.StatusOK, report.Text)
}

func (h *Handler) runMission(c echo.Context) error {
	// the mission outlives a dropped client connection
	ctx := context.WithoutCancel(c.Request().Context())
	out, err := h.Mission.Run(ctx, nil)
	if out == nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Status: http.StatusInternalServerError, Message: err.Error()})
	}

	resp := missionResponse{RunID: out.Report.RunID, Delivered: out.Delivered}
	if err != nil {
		resp.Error = err.Error()
		return c.JSON(http.StatusBadGateway, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func newBriefingResponse(r *briefing.Report) briefingResponse {
	return briefingResponse{
		RunID:     r.RunID,
		Date:      r.Date.Format("2006-01-02"),
		Text:      r.Text,
		Fragments: r.Fragments,
		Portfolio: r.Portfolio,
	}
}
