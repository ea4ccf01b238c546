// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package entitlement decides whether the site runs with the pro feature
// set. Pro-only templates are skipped by the resolver without it and the
// free tier renders at most one template per page type.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"themebuilder/internal/models"
)

// Modes accepted by FromMode.
const (
	ModeOn      = "on"
	ModeOff     = "off"
	ModeLicense = "license"
)

// DefaultMemoTTL is how long SettingsChecker trusts a license read.
const DefaultMemoTTL = 30 * time.Second

// Checker reports whether the caller holds pro entitlement.
type Checker interface {
	HasPro(ctx context.Context) bool
}

// Static is a fixed entitlement, for deployments that do not license per site.
type Static bool

// HasPro returns the fixed value.
func (s Static) HasPro(context.Context) bool { return bool(s) }

// SettingsReader reads a single site setting.
type SettingsReader interface {
	Get(ctx context.Context, key, fallback string) (string, error)
}

// SettingsChecker derives entitlement from the license_status site setting.
// Reads are memoized for a short period so resolution does not hit the
// database on every request.
type SettingsChecker struct {
	settings SettingsReader
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	pro       bool
	checkedAt time.Time
	// Reads are numbered so a slow read never replaces a newer result,
	// and reads started before Reset are never stored.
	issued uint64
	stored uint64
	floor  uint64
}

// NewSettingsChecker creates a checker backed by settings.
func NewSettingsChecker(settings SettingsReader, ttl time.Duration) *SettingsChecker {
	if ttl <= 0 {
		ttl = DefaultMemoTTL
	}
	return &SettingsChecker{settings: settings, ttl: ttl, now: time.Now}
}

// HasPro reports whether the stored license is valid. A failed read
// denies entitlement and is retried on the next call. The settings read
// happens outside the lock.
func (c *SettingsChecker) HasPro(ctx context.Context) bool {
	c.mu.Lock()
	now := c.now()
	if !c.checkedAt.IsZero() && now.Sub(c.checkedAt) < c.ttl {
		pro := c.pro
		c.mu.Unlock()
		return pro
	}
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	status, err := c.settings.Get(ctx, models.SettingLicenseStatus, "")
	if err != nil {
		slog.Warn("license status read failed", "error", err)
		return false
	}
	pro := strings.EqualFold(strings.TrimSpace(status), models.LicenseStatusValid)

	c.mu.Lock()
	if seq > c.stored && seq >= c.floor {
		c.pro = pro
		c.checkedAt = now
		c.stored = seq
	}
	c.mu.Unlock()
	return pro
}

// Reset forgets the memoized license status, including reads still in
// flight.
func (c *SettingsChecker) Reset() {
	c.mu.Lock()
	c.checkedAt = time.Time{}
	c.floor = c.issued + 1
	c.mu.Unlock()
}

// FromMode builds the checker for a configured mode.
func FromMode(mode string, settings SettingsReader, ttl time.Duration) (Checker, error) {
	switch strings.ToLower(mode) {
	case ModeOn:
		return Static(true), nil
	case ModeOff:
		return Static(false), nil
	case ModeLicense:
		if settings == nil {
			return nil, fmt.Errorf("entitlement mode %q needs a settings store", mode)
		}
		return NewSettingsChecker(settings, ttl), nil
	}
	return nil, fmt.Errorf("unknown entitlement mode %q", mode)
}
