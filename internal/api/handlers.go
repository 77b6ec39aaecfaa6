// Package api exposes the newsletter pipeline over HTTP: CSV parsing,
// rendering, tracking builders, scraping and draft management.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atrapalo/newslettergen/internal/assist"
	"github.com/atrapalo/newslettergen/internal/newsletter"
	"github.com/atrapalo/newslettergen/internal/pkg/logger"
	"github.com/atrapalo/newslettergen/internal/render"
	"github.com/atrapalo/newslettergen/internal/scraper"
	"github.com/atrapalo/newslettergen/internal/storage"
	"github.com/atrapalo/newslettergen/internal/tracking"
)

// Handlers holds the services behind the HTTP surface.
type Handlers struct {
	store     *storage.Store
	engine    *render.Engine
	scraper   *scraper.Scraper
	assistant *assist.Assistant
}

// NewHandlers wires the services into a handler set. The assistant may
// be nil.
func NewHandlers(store *storage.Store, engine *render.Engine, sc *scraper.Scraper, a *assist.Assistant) *Handlers {
	return &Handlers{store: store, engine: engine, scraper: sc, assistant: a}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ParseNewsletter turns an uploaded CSV into a Document.
func (h *Handlers) ParseNewsletter(w http.ResponseWriter, r *http.Request) {
	body, err := csvBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	doc, err := newsletter.Parse(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "parsing CSV: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// GenerateNewsletter turns an uploaded CSV into rendered, UTM-decorated
// HTML. With ?archive=true the result is also stored and the archive
// key returned in the X-Archive-Key header.
func (h *Handlers) GenerateNewsletter(w http.ResponseWriter, r *http.Request) {
	body, err := csvBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	doc, err := newsletter.Parse(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "parsing CSV: "+err.Error())
		return
	}

	campaign := r.URL.Query().Get("campaign")

	html, err := h.engine.Render(doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "rendering: "+err.Error())
		return
	}
	html = tracking.DecorateHTML(html, campaign)

	if r.URL.Query().Get("archive") == "true" {
		key, err := h.store.ArchiveHTML(r.Context(), campaign, []byte(html))
		if err != nil {
			logger.Error("archiving newsletter", "error", err)
		} else {
			w.Header().Set("X-Archive-Key", key)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// PreviewNewsletter renders an inline template body against a document,
// for iterating on template changes without touching the template dir.
func (h *Handlers) PreviewNewsletter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string               `json:"template"`
		Document *newsletter.Document `json:"document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Template == "" || req.Document == nil {
		respondError(w, http.StatusBadRequest, "missing template or document")
		return
	}

	html, err := h.engine.RenderString(req.Template, req.Document)
	if err != nil {
		respondError(w, http.StatusBadRequest, "rendering: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// trackingRequest carries the channel attribution form.
type trackingRequest struct {
	URLs          []string `json:"urls"`
	Channel       string   `json:"channel"`
	Campaign      string   `json:"campaign"`
	Source        string   `json:"source"`
	Product       string   `json:"product"`
	SocialNetwork string   `json:"social_network"`
	Date          string   `json:"date"`
}

type trackedURL struct {
	Original string `json:"original"`
	Final    string `json:"final"`
}

// BuildTrackingURLs applies channel attribution to a batch of URLs.
func (h *Handlers) BuildTrackingURLs(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	params := tracking.ChannelParams{
		Source:        req.Source,
		Product:       req.Product,
		SocialNetwork: req.SocialNetwork,
		Date:          req.Date,
	}

	results := make([]trackedURL, 0, len(req.URLs))
	for _, u := range req.URLs {
		results = append(results, trackedURL{
			Original: u,
			Final:    tracking.BuildChannelURL(u, tracking.Channel(req.Channel), req.Campaign, params),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

type resizeRequest struct {
	URLs    []string `json:"urls"`
	Width   int      `json:"width"`
	Quality int      `json:"quality"`
}

// ResizeImages builds CDN resize URLs for a batch of images.
func (h *Handlers) ResizeImages(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quality == 0 {
		req.Quality = 75
	}

	results := make([]trackedURL, 0, len(req.URLs))
	for _, u := range req.URLs {
		results = append(results, trackedURL{
			Original: u,
			Final:    render.ResizeImageURL(u, req.Width, req.Quality),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// ScrapeProduct fetches product data from an Atrápalo page.
func (h *Handlers) ScrapeProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		respondError(w, http.StatusBadRequest, "missing url")
		return
	}

	product, err := h.scraper.Fetch(r.Context(), req.URL)
	if err != nil {
		logger.Warn("scrape failed", "url", req.URL, "error", err)
		respondError(w, http.StatusBadGateway, "scraping: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// ListDrafts returns all drafts, newest first.
func (h *Handlers) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.store.ListDrafts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"drafts": drafts, "total": len(drafts)})
}

// SaveDraft creates or updates a draft.
func (h *Handlers) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var draft storage.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if draft.Document == nil {
		respondError(w, http.StatusBadRequest, "missing document")
		return
	}

	if err := h.store.SaveDraft(r.Context(), &draft); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

// GetDraft retrieves a draft by ID.
func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.store.GetDraft(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if draft == nil {
		respondError(w, http.StatusNotFound, "draft not found")
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

// DeleteDraft removes a draft.
func (h *Handlers) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDraft(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetArchivedNewsletter serves a previously archived HTML newsletter.
func (h *Handlers) GetArchivedNewsletter(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	html, err := h.store.GetArchivedHTML(r.Context(), key)
	if err != nil {
		respondError(w, http.StatusNotFound, "archive not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// SuggestDescription asks the copy assistant to rewrite a card
// description.
func (h *Handlers) SuggestDescription(w http.ResponseWriter, r *http.Request) {
	var card newsletter.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := h.assistant.SuggestDescription(r.Context(), &card)
	if err != nil {
		respondAssistError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"description": out})
}

// SuggestSubjects asks the copy assistant for subject line ideas.
func (h *Handlers) SuggestSubjects(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Campaign string            `json:"campaign"`
		Cards    []newsletter.Card `json:"cards"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	subjects, err := h.assistant.SuggestSubjects(r.Context(), req.Campaign, req.Cards)
	if err != nil {
		respondAssistError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"subjects": subjects})
}

func respondAssistError(w http.ResponseWriter, err error) {
	if err == assist.ErrDisabled {
		respondError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}

// csvBody returns the uploaded CSV: a multipart "file" field when
// present, the raw request body otherwise.
func csvBody(r *http.Request) (io.ReadCloser, error) {
	if err := r.ParseMultipartForm(10 << 20); err == nil {
		if file, _, err := r.FormFile("file"); err == nil {
			return file, nil
		}
	}
	return r.Body, nil
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
