package http

import (
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/go-shorty/shorty/internal/database"
	"github.com/go-shorty/shorty/internal/models"
	"github.com/go-shorty/shorty/pkg/response"
)

type clickEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent"`
	IP        string    `json:"ip"`
	Referer   string    `json:"referer"`
}

type linkResponse struct {
	ID           int64                `json:"id"`
	ShortCode    string               `json:"shortCode"`
	OriginalURL  string               `json:"originalUrl"`
	Clicks       int64                `json:"clicks"`
	ClickHistory []clickEventResponse `json:"clickHistory"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func toLinkResponse(link *models.Link) linkResponse {
	history := make([]clickEventResponse, 0, len(link.ClickHistory))
	for _, event := range link.ClickHistory {
		history = append(history, clickEventResponse{
			Timestamp: event.Timestamp,
			UserAgent: event.UserAgent,
			IP:        event.IP,
			Referer:   event.Referer,
		})
	}

	return linkResponse{
		ID:           link.ID,
		ShortCode:    link.ShortCode,
		OriginalURL:  link.OriginalURL,
		Clicks:       link.Clicks,
		ClickHistory: history,
		CreatedAt:    link.CreatedAt,
		UpdatedAt:    link.UpdatedAt,
	}
}

func toLinkResponses(links []models.Link) []linkResponse {
	resp := make([]linkResponse, 0, len(links))
	for i := range links {
		resp = append(resp, toLinkResponse(&links[i]))
	}

	return resp
}

func shortURL(baseURL, shortCode string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + shortCode
}

type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url"`
	CustomCode  string `json:"customCode"`
}

type shortenResponse struct {
	ShortCode   string `json:"shortCode"`
	ShortURL    string `json:"shortUrl"`
	OriginalURL string `json:"originalUrl"`
}

func handleShortenLink(svc LinkService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleShortenLink"

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		link, err := svc.ShortenLink(r.Context(), req.OriginalURL, req.CustomCode)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ShortCodeExistsResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, shortenResponse{
			ShortCode:   link.ShortCode,
			ShortURL:    shortURL(baseURL, link.ShortCode),
			OriginalURL: link.OriginalURL,
		})
	}
}

const notFoundPage = `<!DOCTYPE html>
<html>
<head><title>URL Not Found</title></head>
<body>
<h1>URL Not Found</h1>
<p>The short URL <code>/%s</code> doesn't exist or has been removed.</p>
</body>
</html>
`

func handleRedirect(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		event := models.ClickEvent{
			Timestamp: time.Now().UTC(),
			UserAgent: r.UserAgent(),
			IP:        r.RemoteAddr,
			Referer:   r.Referer(),
		}

		link, err := svc.ResolveLink(r.Context(), shortCode, event)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprintf(w, notFoundPage, html.EscapeString(shortCode))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, link.OriginalURL, http.StatusFound)
	}
}

func handleListLinks(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleListLinks"

	return func(w http.ResponseWriter, r *http.Request) {
		links, err := svc.ListLinks(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toLinkResponses(links))
	}
}

func handleGetLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleGetLink"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		link, err := svc.GetLink(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.LinkNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toLinkResponse(link))
	}
}

type updateRequest struct {
	OriginalURL  string `json:"originalUrl" validate:"omitempty,url"`
	NewShortCode string `json:"newShortCode"`
}

func handleModifyLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleModifyLink"

	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		shortCode := chi.URLParam(r, "shortCode")

		var patch models.LinkPatch
		if req.OriginalURL != "" {
			patch.OriginalURL = &req.OriginalURL
		}
		if req.NewShortCode != "" && req.NewShortCode != shortCode {
			patch.ShortCode = &req.NewShortCode
		}

		if patch.OriginalURL == nil && patch.ShortCode == nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyUpdateResponse)
			return
		}

		link, err := svc.ModifyLink(r.Context(), shortCode, patch)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrLinkNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.LinkNotFoundResponse)
			case errors.Is(err, database.ErrShortCodeExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ShortCodeExistsResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toLinkResponse(link))
	}
}

type deleteResponse struct {
	Message string `json:"message"`
}

func handleRemoveLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRemoveLink"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		if err := svc.RemoveLink(r.Context(), shortCode); err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.LinkNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, deleteResponse{Message: "URL deleted successfully"})
	}
}

type dailyStatResponse struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type browserStatResponse struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

type referrerStatResponse struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

type statsResponse struct {
	TotalURLs      int64                  `json:"totalUrls"`
	TotalClicks    int64                  `json:"totalClicks"`
	TopURLs        []linkResponse         `json:"topUrls"`
	RecentActivity []linkResponse         `json:"recentActivity"`
	DailyStats     []dailyStatResponse    `json:"dailyStats"`
	BrowserStats   []browserStatResponse  `json:"browserStats"`
	ReferrerStats  []referrerStatResponse `json:"referrerStats"`
}

func toStatsResponse(summary *models.Summary) statsResponse {
	resp := statsResponse{
		TotalURLs:      summary.TotalURLs,
		TotalClicks:    summary.TotalClicks,
		TopURLs:        toLinkResponses(summary.TopURLs),
		RecentActivity: toLinkResponses(summary.RecentActivity),
		DailyStats:     make([]dailyStatResponse, 0, len(summary.DailyStats)),
		BrowserStats:   make([]browserStatResponse, 0, len(summary.BrowserStats)),
		ReferrerStats:  make([]referrerStatResponse, 0, len(summary.ReferrerStats)),
	}

	for _, stat := range summary.DailyStats {
		resp.DailyStats = append(resp.DailyStats, dailyStatResponse(stat))
	}
	for _, stat := range summary.BrowserStats {
		resp.BrowserStats = append(resp.BrowserStats, browserStatResponse(stat))
	}
	for _, stat := range summary.ReferrerStats {
		resp.ReferrerStats = append(resp.ReferrerStats, referrerStatResponse(stat))
	}

	return resp
}

func handleStats(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleStats"

	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Stats(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toStatsResponse(summary))
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

func handleHealth(db Pinger) http.HandlerFunc {
	const op = "api.http.handleHealth"

	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, healthResponse{
				Status:    "ERROR",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Database:  "Disconnected",
			})
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, healthResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Database:  "Connected",
		})
	}
}
