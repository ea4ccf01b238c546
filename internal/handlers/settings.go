// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"themebuilder/internal/entitlement"
	"themebuilder/internal/models"
)

const maxLicenseFieldLen = 200

// SettingsStore reads and writes site settings.
type SettingsStore interface {
	All(ctx context.Context) (models.SiteSettings, error)
	Set(ctx context.Context, key, value string) error
}

// resetter is implemented by entitlement checkers that memoize.
type resetter interface {
	Reset()
}

// Settings groups the site settings handlers.
type Settings struct {
	store SettingsStore
	pro   entitlement.Checker
}

// NewSettings creates a new Settings handler group.
func NewSettings(st SettingsStore, pro entitlement.Checker) *Settings {
	return &Settings{store: st, pro: pro}
}

// Show returns the site settings with the license key masked, and the
// current entitlement.
func (s *Settings) Show(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.All(r.Context())
	if err != nil {
		slog.Error("load settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load settings.")
		return
	}

	if key := settings.Get(models.SettingLicenseKey, ""); key != "" {
		settings[models.SettingLicenseKey] = maskKey(key)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"settings": settings,
		"has_pro":  s.pro.HasPro(r.Context()),
	})
}

// UpdateLicense stores the license status (and optionally key) and drops
// any memoized entitlement so the next resolution sees it.
func (s *Settings) UpdateLicense(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string  `json:"status"`
		Key    *string `json:"key"`
	}
	if err := decodeJSON(w, r, &body, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := strings.ToLower(strings.TrimSpace(body.Status))
	if status == "" {
		writeError(w, http.StatusUnprocessableEntity, "License status is required.")
		return
	}
	if len(status) > maxLicenseFieldLen || (body.Key != nil && len(*body.Key) > maxLicenseFieldLen) {
		writeError(w, http.StatusUnprocessableEntity, "License fields are too long.")
		return
	}

	if body.Key != nil {
		if err := s.store.Set(r.Context(), models.SettingLicenseKey, strings.TrimSpace(*body.Key)); err != nil {
			slog.Error("save license key failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save license.")
			return
		}
	}
	if err := s.store.Set(r.Context(), models.SettingLicenseStatus, status); err != nil {
		slog.Error("save license status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save license.")
		return
	}

	if m, ok := s.pro.(resetter); ok {
		m.Reset()
	}
	slog.Info("license updated", "status", status)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"has_pro": s.pro.HasPro(r.Context()),
	})
}

// maskKey keeps the last four characters of a license key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
