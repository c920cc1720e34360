package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Abhishek-erlin/slack-integration/internal/domain"
	"github.com/Abhishek-erlin/slack-integration/internal/scraper"
	"github.com/Abhishek-erlin/slack-integration/internal/service"
)

// ArticleHandler proxies article scraping and generation requests.
type ArticleHandler struct {
	articles *service.ArticleService
}

func NewArticleHandler(articles *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// Register mounts the article routes on the given group.
func (h *ArticleHandler) Register(g *echo.Group) {
	g.POST("/scrape", h.Scrape)
	g.POST("/generate", h.Generate)
	g.GET("/jobs/:id", h.Job)
}

type scrapeRequest struct {
	UserID *string `json:"user_id" validate:"omitempty,uuid"`
	URL    string  `json:"url" validate:"required,url"`
}

// Scrape extracts article content from a URL via the scraping provider.
func (h *ArticleHandler) Scrape(c echo.Context) error {
	var req scrapeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, err := parseOptionalUUID(req.UserID, "user_id")
	if err != nil {
		return err
	}

	result, jobID, err := h.articles.Scrape(c.Request().Context(), userID, req.URL)
	if err != nil {
		return proxyError(err)
	}

	return JSON(c, http.StatusOK, map[string]any{
		"job_id": jobID,
		"result": result,
	})
}

type generateRequest struct {
	UserID   *string `json:"user_id" validate:"omitempty,uuid"`
	Keyword  string  `json:"keyword" validate:"required"`
	Location string  `json:"location"`
	Goal     string  `json:"goal"`
	URL      string  `json:"url" validate:"omitempty,url"`
}

// Generate produces article content for a keyword via the generation
// provider.
func (h *ArticleHandler) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, err := parseOptionalUUID(req.UserID, "user_id")
	if err != nil {
		return err
	}

	result, jobID, err := h.articles.Generate(c.Request().Context(), userID, scraper.GenerateRequest{
		Keyword:  req.Keyword,
		Location: req.Location,
		Goal:     req.Goal,
		URL:      req.URL,
	})
	if err != nil {
		return proxyError(err)
	}

	return JSON(c, http.StatusOK, map[string]any{
		"job_id": jobID,
		"result": result,
	})
}

// Job returns a tracked article job by ID.
func (h *ArticleHandler) Job(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return &domain.ValidationError{Field: "id", Message: "must be a valid UUID"}
	}

	job, err := h.articles.Job(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, job)
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Message: "must be a valid UUID"}
	}
	return &id, nil
}

// proxyError maps upstream provider failures to gateway status codes.
func proxyError(err error) error {
	switch {
	case errors.Is(err, scraper.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, scraper.ErrTimeout):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "upstream provider timed out")
	case errors.Is(err, scraper.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "upstream provider rate limited the request")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, "upstream provider request failed")
	}
}
