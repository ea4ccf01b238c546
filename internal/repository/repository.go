// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package repository loads Theme Builder templates from the content store,
// normalizes their metadata into models.Template records and keeps the
// result in a read-through cache.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"themebuilder/internal/conditions"
	"themebuilder/internal/models"
)

// CacheKey is the process-wide key the active template list is stored under.
const CacheKey = "tb:templates"

// Store is the slice of the content store the repository reads from.
type Store interface {
	FindIDsWithAnyMeta(ctx context.Context, postType string, keys ...string) ([]int64, error)
	FindPosts(ctx context.Context, ids []int64) (map[int64]*models.Post, error)
	MetadataByPost(ctx context.Context, ids []int64) (map[int64]models.Meta, error)
}

// Cache is a key/value store with a fixed TTL. Failures are treated as
// misses by the implementation and never surface here.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, key string)
}

// Repository serves the active template list.
type Repository struct {
	store Store
	cache Cache
}

// New creates a repository reading from store and caching in cache.
func New(store Store, cache Cache) *Repository {
	return &Repository{store: store, cache: cache}
}

// ActiveTemplates returns every Theme Builder template, enabled or not.
// A cached list is returned verbatim; on a miss the list is rebuilt from
// the store and written back.
func (r *Repository) ActiveTemplates(ctx context.Context) ([]models.Template, error) {
	if data, ok := r.cache.Get(ctx, CacheKey); ok {
		var cached []models.Template
		err := json.Unmarshal(data, &cached)
		if err == nil {
			return cached, nil
		}
		slog.Warn("discarding undecodable template cache entry", "error", err)
	}

	templates, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(templates)
	if err != nil {
		return nil, fmt.Errorf("encode template cache: %w", err)
	}
	r.cache.Set(ctx, CacheKey, data)

	slog.Debug("template list rebuilt", "count", len(templates))
	return templates, nil
}

// ClearCache drops the cached template list.
func (r *Repository) ClearCache(ctx context.Context) {
	r.cache.Delete(ctx, CacheKey)
}

// LocationCandidates returns the enabled templates whose location targets pc.
func (r *Repository) LocationCandidates(ctx context.Context, pc models.PageContext) ([]models.Template, error) {
	templates, err := r.ActiveTemplates(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.Template
	for _, t := range templates {
		if t.Enabled && MatchesLocation(t, pc) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *Repository) load(ctx context.Context) ([]models.Template, error) {
	// Legacy entities predate the enabled marker, so either key qualifies.
	ids, err := r.store.FindIDsWithAnyMeta(ctx, models.TemplatePostType, models.MetaEnabled, models.MetaLocation)
	if err != nil {
		return nil, fmt.Errorf("find templates: %w", err)
	}

	if len(ids) == 0 {
		return []models.Template{}, nil
	}

	metas, err := r.store.MetadataByPost(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("template metadata: %w", err)
	}
	posts, err := r.store.FindPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("template posts: %w", err)
	}

	templates := make([]models.Template, 0, len(ids))
	for _, id := range ids {
		t, ok := Build(id, metas[id])
		if !ok {
			continue
		}
		if post := posts[id]; post != nil {
			t.Title = post.Title
			t.Status = string(post.Status)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// Build turns stored metadata into a template record. It reports false
// when the entity carries no location and therefore is not a template.
func Build(id int64, meta models.Meta) (models.Template, bool) {
	location := strings.TrimSpace(meta.Get(models.MetaLocation))
	if location == "" {
		return models.Template{}, false
	}

	tree := conditions.Normalize(meta.Get(models.MetaConditions))

	return models.Template{
		ID:          id,
		Location:    models.Location(location),
		SubLocation: strings.TrimSpace(meta.Get(models.MetaSubLocation)),
		Conditions:  tree,
		Priority:    priority(meta.Get(models.MetaPriority)),
		IsProOnly:   meta.Flag(models.MetaIsProOnly) == models.FlagTrue || conditions.IsProOnly(tree),
		Enabled:     meta.Flag(models.MetaEnabled).Bool(true),
	}, true
}

func priority(raw string) int {
	n, ok := models.LeadingInt(raw)
	if !ok || n == 0 || n < math.MinInt32 || n > math.MaxInt32 {
		return models.DefaultPriority
	}
	return int(n)
}
