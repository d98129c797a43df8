// Package httpapi exposes the REST surface: drafts, entities, providers and
// invites. All routes assume bearer authentication has already populated the
// request context with the user ID.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/FolioWorks/entity_layer/internal/app/domain/draft"
	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
	"github.com/FolioWorks/entity_layer/internal/app/services/drafts"
	"github.com/FolioWorks/entity_layer/internal/app/services/entities"
	"github.com/FolioWorks/entity_layer/internal/app/services/health"
	"github.com/FolioWorks/entity_layer/internal/app/services/invites"
	"github.com/FolioWorks/entity_layer/internal/app/services/providers"
	"github.com/FolioWorks/entity_layer/internal/app/services/submission"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/internal/httputil"
	"github.com/FolioWorks/entity_layer/internal/middleware"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Handler routes the authenticated API.
type Handler struct {
	drafts     *drafts.Service
	entities   *entities.Service
	providers  *providers.Service
	invites    *invites.Service
	submission *submission.Service
	health     *health.Service
	log        *logger.Logger
}

// Config wires a Handler.
type Config struct {
	Drafts     *drafts.Service
	Entities   *entities.Service
	Providers  *providers.Service
	Invites    *invites.Service
	Submission *submission.Service
	Health     *health.Service
	Logger     *logger.Logger
}

// New constructs the API handler.
func New(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	return &Handler{
		drafts:     cfg.Drafts,
		entities:   cfg.Entities,
		providers:  cfg.Providers,
		invites:    cfg.Invites,
		submission: cfg.Submission,
		health:     cfg.Health,
		log:        log,
	}
}

// ServeHTTP dispatches on the first path segment.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segments := splitPath(r.URL.Path)
	if len(segments) == 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch segments[0] {
	case "drafts":
		h.handleDrafts(w, r, segments[1:])
	case "entities":
		h.handleEntities(w, r, segments[1:])
	case "providers":
		h.handleProviders(w, r, segments[1:])
	case "invites":
		h.handleInvites(w, r, segments[1:])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// Healthz serves the unauthenticated health snapshot.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	st := h.health.Check(r.Context())
	code := http.StatusOK
	if st.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

// --- Drafts ---

func (h *Handler) handleDrafts(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, err := h.drafts.Load(r.Context(), userID)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	case http.MethodPut:
		var d draft.Draft
		if err := decodeJSON(w, r, &d); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.drafts.Save(r.Context(), userID, d); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case http.MethodDelete:
		if err := h.drafts.Clear(r.Context(), userID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- Entities ---

type createEntityRequest struct {
	Name          string                                       `json:"name"`
	Handle        string                                       `json:"handle"`
	Brief         string                                       `json:"brief"`
	Type          string                                       `json:"type"`
	BannerRef     string                                       `json:"banner_ref"`
	AvatarRef     string                                       `json:"avatar_ref"`
	SocialLinks   []entity.SocialLink                          `json:"social_links"`
	Configuration map[entity.CategoryKey]entity.CategoryConfig `json:"configuration"`
	CompletedKeys []entity.CategoryKey                         `json:"completed_keys"`
	Invited       []invite.ContactCandidate                    `json:"invited_contacts"`
	InviteMessage string                                       `json:"invite_message"`
}

type createEntityResponse struct {
	Success  bool          `json:"success"`
	EntityID string        `json:"entity_id"`
	OrgID    string        `json:"org_id"`
	Entity   entity.Entity `json:"entity"`
}

func (h *Handler) handleEntities(w http.ResponseWriter, r *http.Request, rest []string) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch {
	case len(rest) == 0 && r.Method == http.MethodPost:
		h.createEntity(w, r, userID)
	case len(rest) == 0 && r.Method == http.MethodGet:
		list, err := h.entities.List(r.Context(), userID)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case len(rest) == 1 && r.Method == http.MethodGet:
		ent, err := h.entities.Get(r.Context(), rest[0])
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		if ent.OwnerID != userID {
			writeError(w, http.StatusForbidden, "not the entity owner")
			return
		}
		writeJSON(w, http.StatusOK, ent)
	case len(rest) == 1 && r.Method == http.MethodPatch:
		h.patchEntity(w, r, userID, rest[0])
	case len(rest) == 0 || len(rest) == 1:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) createEntity(w http.ResponseWriter, r *http.Request, userID string) {
	var req createEntityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for key := range req.Configuration {
		if !entity.ValidCategory(key) {
			writeError(w, http.StatusBadRequest, "unknown category "+string(key))
			return
		}
	}

	d := draft.Empty()
	d.Step = draft.StepInvite
	d.Profile = draft.Profile{
		Name:        req.Name,
		Handle:      req.Handle,
		BannerRef:   req.BannerRef,
		AvatarRef:   req.AvatarRef,
		Brief:       req.Brief,
		Type:        req.Type,
		SocialLinks: req.SocialLinks,
	}
	if req.Configuration != nil {
		d.Configuration.Data = req.Configuration
	}
	d.Configuration.CompletedKeys = req.CompletedKeys

	created, err := h.submission.Submit(r.Context(), userID, d)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if len(req.Invited) > 0 {
		if _, err := h.invites.Send(r.Context(), userID, created.ID, created.Name, req.InviteMessage, req.Invited); err != nil {
			h.log.WithContext(r.Context()).WithError(err).Warn("invite send failed during entity creation")
		}
	}

	writeJSON(w, http.StatusCreated, createEntityResponse{
		Success:  true,
		EntityID: created.ID,
		OrgID:    created.OrgID,
		Entity:   created,
	})
}

func (h *Handler) patchEntity(w http.ResponseWriter, r *http.Request, userID, id string) {
	ent, err := h.entities.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if ent.OwnerID != userID {
		writeError(w, http.StatusForbidden, "not the entity owner")
		return
	}

	var p entities.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.entities.Update(r.Context(), id, p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- Providers ---

func (h *Handler) handleProviders(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 2 || rest[0] != "category" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	key := entity.CategoryKey(rest[1])
	if !entity.ValidCategory(key) {
		writeError(w, http.StatusBadRequest, "unknown category "+rest[1])
		return
	}
	list, err := h.providers.ListByCategory(r.Context(), key)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// --- Invites ---

type createInviteRequest struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

func (h *Handler) handleInvites(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req createInviteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		inv, err := h.invites.Create(r.Context(), invite.Invite{
			InviterID: userID,
			EntityID:  req.EntityID,
			Name:      req.Name,
			Phone:     req.Phone,
			Email:     req.Email,
			Message:   req.Message,
		})
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
	case http.MethodGet:
		list, err := h.invites.List(r.Context(), userID)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- Helpers ---

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]interface{}{"success": false, "error": msg})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	h.log.WithContext(r.Context()).WithError(err).Error("request failed")
	msg := err.Error()
	if len(msg) > httputil.DefaultMaxErrorBodyBytes {
		msg = msg[:httputil.DefaultMaxErrorBodyBytes]
	}
	writeError(w, http.StatusInternalServerError, msg)
}
