package agent_http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"agent-orchestrator/internal/usecase"
)

// Handler exposes the agent pipeline over HTTP.
type Handler struct {
	answer usecase.AnswerUsecase
	router usecase.RouterUsecase
	logger *slog.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(answer usecase.AnswerUsecase, router usecase.RouterUsecase, logger *slog.Logger) *Handler {
	return &Handler{answer: answer, router: router, logger: logger}
}

// Register mounts all routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	v1 := e.Group("/v1")
	v1.POST("/agent/answer", h.Answer)
	v1.POST("/router/intent", h.RouteIntent)
}

type answerRequest struct {
	Query string `json:"query"`
}

type intentRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Answer runs the full pipeline. The usecase degrades internally, so the only
// client error here is a missing query.
func (h *Handler) Answer(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "query is required"})
	}

	resp := h.answer.Answer(c.Request().Context(), query)
	return c.JSON(http.StatusOK, resp)
}

// RouteIntent exposes the routing decision on its own, for debugging and for
// clients that run retrieval themselves.
func (h *Handler) RouteIntent(c echo.Context) error {
	var req intentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "query is required"})
	}

	decision := h.router.Route(c.Request().Context(), query)
	return c.JSON(http.StatusOK, decision)
}
