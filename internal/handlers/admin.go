// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"themebuilder/internal/admin"
	"themebuilder/internal/conditions"
	"themebuilder/internal/entitlement"
	"themebuilder/internal/models"
	"themebuilder/internal/repository"
	"themebuilder/internal/slug"
	"themebuilder/internal/store"
)

// Cache log pagination limits.
const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// TemplateStore is the persistence the admin API writes through.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, in *models.TemplateInput) (int64, error)
	UpdateTemplate(ctx context.Context, id int64, in *models.TemplateInput) error
	SetTemplateEnabled(ctx context.Context, id int64, enabled bool) error
	Trash(ctx context.Context, id int64) error
	FindPost(ctx context.Context, id int64) (*models.Post, error)
	Metadata(ctx context.Context, id int64) (models.Meta, error)
}

// TemplateRepository is the cached template view the admin API reads and
// invalidates.
type TemplateRepository interface {
	ActiveTemplates(ctx context.Context) ([]models.Template, error)
	ClearCache(ctx context.Context)
}

// CacheLog records and lists cache invalidations.
type CacheLog interface {
	Log(ctx context.Context, entityType string, entityID int64, action string)
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// Admin groups the template management handlers.
type Admin struct {
	store    TemplateStore
	repo     TemplateRepository
	cacheLog CacheLog
	pro      entitlement.Checker
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(st TemplateStore, repo TemplateRepository, cacheLog CacheLog, pro entitlement.Checker) *Admin {
	return &Admin{store: st, repo: repo, cacheLog: cacheLog, pro: pro}
}

// List returns the admin rows for every template the repository knows.
func (a *Admin) List(w http.ResponseWriter, r *http.Request) {
	templates, err := a.repo.ActiveTemplates(r.Context())
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load templates.")
		return
	}

	hasPro := a.pro.HasPro(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"has_pro":   hasPro,
		"templates": admin.BuildRows(templates, hasPro),
	})
}

// Get returns one template read straight from the store, whether or not it
// is enabled.
func (a *Admin) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid template id.")
		return
	}

	tmpl, found, err := a.loadTemplate(r.Context(), id)
	if err != nil {
		slog.Error("get template failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load template.")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}

	rows := admin.BuildRows([]models.Template{tmpl}, a.pro.HasPro(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{
		"template": tmpl,
		"row":      rows[0],
	})
}

// Create stores a new template.
func (a *Admin) Create(w http.ResponseWriter, r *http.Request) {
	var in models.TemplateInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if msg := validateTemplate(&in, true); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	normalizeInput(&in)

	id, err := a.store.CreateTemplate(r.Context(), &in)
	if err != nil {
		slog.Error("create template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create template.")
		return
	}

	a.invalidate(r.Context(), id, "create")
	slog.Info("template created", "id", id, "location", in.Location)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Update applies a partial update to a template.
func (a *Admin) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid template id.")
		return
	}

	var in models.TemplateInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if msg := validateTemplate(&in, false); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	normalizeInput(&in)

	if err := a.store.UpdateTemplate(r.Context(), id, &in); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found.")
			return
		}
		slog.Error("update template failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to update template.")
		return
	}

	a.invalidate(r.Context(), id, "update")
	slog.Info("template updated", "id", id)
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// Toggle sets the enabled marker from an {"enabled": bool} body, or flips
// the stored value when the body is empty.
func (a *Admin) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid template id.")
		return
	}

	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeJSON(w, r, &body, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.store.FindPost(r.Context(), id)
	if err != nil {
		slog.Error("toggle template failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to update template.")
		return
	}
	if !isTemplate(post) {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}

	enabled := false
	if body.Enabled != nil {
		enabled = *body.Enabled
	} else {
		meta, err := a.store.Metadata(r.Context(), id)
		if err != nil {
			slog.Error("toggle template failed", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "Failed to update template.")
			return
		}
		enabled = !meta.Flag(models.MetaEnabled).Bool(true)
	}

	if err := a.store.SetTemplateEnabled(r.Context(), id, enabled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found.")
			return
		}
		slog.Error("toggle template failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to update template.")
		return
	}

	action := "disable"
	if enabled {
		action = "enable"
	}
	a.invalidate(r.Context(), id, action)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "enabled": enabled})
}

// Trash moves a template to the trash.
func (a *Admin) Trash(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid template id.")
		return
	}

	post, err := a.store.FindPost(r.Context(), id)
	if err != nil {
		slog.Error("trash template failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete template.")
		return
	}
	if !isTemplate(post) || post.Status == models.PostStatusTrash {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}

	if err := a.store.Trash(r.Context(), id); err != nil {
		slog.Error("trash template failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete template.")
		return
	}

	a.invalidate(r.Context(), id, "trash")
	slog.Info("template trashed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ClearCache drops the cached template list.
func (a *Admin) ClearCache(w http.ResponseWriter, r *http.Request) {
	a.repo.ClearCache(r.Context())
	a.cacheLog.Log(r.Context(), "cache", 0, "clear")
	slog.Info("template cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// CacheLog lists recent cache invalidations, newest first.
func (a *Admin) CacheLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer.")
			return
		}
		limit = min(n, maxLogLimit)
	}

	entries, err := a.cacheLog.RecentEntries(r.Context(), limit)
	if err != nil {
		slog.Error("list cache log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load cache log.")
		return
	}
	if entries == nil {
		entries = []store.CacheLogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// loadTemplate reads a template entity and its metadata from the store.
// Entities of another kind, or without a location, are reported as missing.
func (a *Admin) loadTemplate(ctx context.Context, id int64) (models.Template, bool, error) {
	post, err := a.store.FindPost(ctx, id)
	if err != nil || !isTemplate(post) {
		return models.Template{}, false, err
	}
	meta, err := a.store.Metadata(ctx, id)
	if err != nil {
		return models.Template{}, false, err
	}
	tmpl, ok := repository.Build(id, meta)
	if !ok {
		return models.Template{}, false, nil
	}
	tmpl.Title = post.Title
	tmpl.Status = string(post.Status)
	return tmpl, true, nil
}

// invalidate drops the template cache after a write and records why.
func (a *Admin) invalidate(ctx context.Context, id int64, action string) {
	a.repo.ClearCache(ctx)
	a.cacheLog.Log(ctx, "template", id, action)
}

func isTemplate(p *models.Post) bool {
	return p != nil && p.PostType == models.TemplatePostType
}

// normalizeInput stores the sub-location as a key and conditions in their
// canonical shape.
func normalizeInput(in *models.TemplateInput) {
	if in.SubLocation != nil {
		key := slug.Key(*in.SubLocation)
		in.SubLocation = &key
	}
	if in.Conditions != nil {
		tree := conditions.Normalize(*in.Conditions)
		in.Conditions = &tree
	}
}
