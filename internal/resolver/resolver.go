// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package resolver picks the single template that should render a page.
//
// Candidates come from the repository already filtered by location. Each
// one is gated on entitlement and on its conditions, then survivors are
// ranked by priority (lower first), specificity (more rules first) and id.
// With pro entitlement the best-ranked survivor wins; the free tier takes
// the best-ranked survivor whose location matches the page type.
package resolver

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"themebuilder/internal/conditions"
	"themebuilder/internal/entitlement"
	"themebuilder/internal/models"
)

// Reasons a candidate was passed over.
const (
	SkipProOnly      = "pro_only"
	SkipConditions   = "conditions"
	SkipFreeTierType = "free_tier_type"
)

// Candidates is the repository lookup the resolver depends on.
type Candidates interface {
	LocationCandidates(ctx context.Context, pc models.PageContext) ([]models.Template, error)
}

// Resolver resolves page contexts to template ids.
type Resolver struct {
	repo Candidates
	pro  entitlement.Checker
}

// New creates a resolver.
func New(repo Candidates, pro entitlement.Checker) *Resolver {
	return &Resolver{repo: repo, pro: pro}
}

// Candidate is one location candidate and what happened to it.
type Candidate struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	SubLocation string `json:"sub_location"`
	Priority    int    `json:"priority"`
	Specificity int    `json:"specificity"`
	Rank        int    `json:"rank,omitempty"`
	Skipped     string `json:"skipped,omitempty"`
}

// Decision is the full trace of one resolution.
type Decision struct {
	Context    models.PageContext `json:"context"`
	HasPro     bool               `json:"has_pro"`
	Found      bool               `json:"found"`
	TemplateID int64              `json:"template_id,omitempty"`
	Candidates []Candidate        `json:"candidates"`
	Error      string             `json:"error,omitempty"`
}

// Resolve returns the id of the template that should render pc.
func (r *Resolver) Resolve(ctx context.Context, pc models.PageContext) (int64, bool) {
	d := r.Explain(ctx, pc)
	return d.TemplateID, d.Found
}

// Explain resolves pc and reports every candidate considered. Repository
// failures resolve to no template.
func (r *Resolver) Explain(ctx context.Context, pc models.PageContext) Decision {
	d := Decision{Context: pc, Candidates: []Candidate{}}

	templates, err := r.repo.LocationCandidates(ctx, pc)
	if err != nil {
		slog.Error("template candidates unavailable", "type", pc.Type, "error", err)
		d.Error = err.Error()
		return d
	}
	if len(templates) == 0 {
		return d
	}

	d.HasPro = r.pro.HasPro(ctx)

	var skipped []Candidate
	var eligible []Candidate
	for _, t := range templates {
		c := Candidate{
			ID:          t.ID,
			Title:       t.Title,
			Location:    string(t.Location),
			SubLocation: t.SubLocation,
			Priority:    t.Priority,
			Specificity: t.Conditions.RuleCount(),
		}
		switch {
		case t.IsProOnly && !d.HasPro:
			c.Skipped = SkipProOnly
			skipped = append(skipped, c)
		case !conditions.Evaluate(t.Conditions, pc):
			c.Skipped = SkipConditions
			skipped = append(skipped, c)
		default:
			eligible = append(eligible, c)
		}
	}

	Rank(eligible)

	for i := range eligible {
		eligible[i].Rank = i + 1
		if d.Found {
			continue
		}
		if d.HasPro || MatchesPrimaryType(eligible[i], pc.Type) {
			d.Found = true
			d.TemplateID = eligible[i].ID
			continue
		}
		eligible[i].Skipped = SkipFreeTierType
	}

	d.Candidates = append(eligible, skipped...)

	if d.Found {
		slog.Debug("template resolved", "type", pc.Type, "location", pc.Location, "template_id", d.TemplateID)
	}
	return d
}

// Rank orders candidates by priority ascending, specificity descending and
// id ascending.
func Rank(cs []Candidate) {
	slices.SortFunc(cs, func(a, b Candidate) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Specificity, a.Specificity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// MatchesPrimaryType reports whether c may be the one free-tier template
// rendered for a page of type pt.
func MatchesPrimaryType(c Candidate, pt models.PageType) bool {
	switch pt {
	case models.PageNotFound:
		return c.Location == string(models.LocationNotFound)
	case models.PageSearch:
		return c.Location == string(models.LocationSearch)
	case models.PageAuthor:
		return c.SubLocation == models.SubAuthorAll || c.SubLocation == models.SubAuthorSpecific
	case models.PageSingle:
		return c.Location == string(models.LocationSingle)
	case models.PageArchive:
		return c.Location == string(models.LocationArchive)
	}
	return false
}
