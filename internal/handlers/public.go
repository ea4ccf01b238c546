// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"themebuilder/internal/models"
	"themebuilder/internal/pagecontext"
	"themebuilder/internal/resolver"
)

// Resolver is the resolution engine the public handlers call into.
type Resolver interface {
	Resolve(ctx context.Context, pc models.PageContext) (int64, bool)
	Explain(ctx context.Context, pc models.PageContext) resolver.Decision
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Public groups the handlers the downstream renderer calls.
type Public struct {
	resolver Resolver
	db       Pinger
}

// NewPublic creates a new Public handler group. db may be nil, in which
// case the health check only reports the process as alive.
func NewPublic(res Resolver, db Pinger) *Public {
	return &Public{resolver: res, db: db}
}

// resolveResponse is the body of GET /resolve.
type resolveResponse struct {
	Context    models.PageContext `json:"context"`
	Found      bool               `json:"found"`
	TemplateID int64              `json:"template_id,omitempty"`
}

// Resolve builds the page context from the query string and returns the
// winning template id. With explain=1 it returns the full decision trace.
func (p *Public) Resolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q, err := pagecontext.ParseQuery(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pc := pagecontext.Build(q)

	if models.ParseFlag(query.Get("explain")) == models.FlagTrue {
		writeJSON(w, http.StatusOK, p.resolver.Explain(r.Context(), pc))
		return
	}

	id, ok := p.resolver.Resolve(r.Context(), pc)
	writeJSON(w, http.StatusOK, resolveResponse{Context: pc, Found: ok, TemplateID: id})
}

// Health reports whether the service and its database are reachable.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	if p.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.db.PingContext(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
