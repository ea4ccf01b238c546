// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themebuilder/internal/models"
	"themebuilder/internal/resolver"
)

// fakeResolver records the context it was asked about.
type fakeResolver struct {
	id   int64
	ok   bool
	seen models.PageContext
}

func (f *fakeResolver) Resolve(_ context.Context, pc models.PageContext) (int64, bool) {
	f.seen = pc
	return f.id, f.ok
}

func (f *fakeResolver) Explain(_ context.Context, pc models.PageContext) resolver.Decision {
	f.seen = pc
	return resolver.Decision{Context: pc, Found: f.ok, TemplateID: f.id, Candidates: []resolver.Candidate{
		{ID: f.id, Title: "Winner", Rank: 1},
		{ID: 99, Title: "Locked", Skipped: resolver.SkipProOnly},
	}}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestResolve_SingleProduct(t *testing.T) {
	res := &fakeResolver{id: 42, ok: true}
	pub := NewPublic(res, nil)

	rec := serve(http.MethodGet, "/resolve", pub.Resolve,
		"/resolve?is_singular=1&post_type=product&post_id=7&author_id=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, models.PageSingle, res.seen.Type)
	assert.Equal(t, "single_product", res.seen.Location)
	assert.Equal(t, int64(7), res.seen.PostID)

	var body resolveResponse
	decodeBody(t, rec, &body)
	assert.True(t, body.Found)
	assert.Equal(t, int64(42), body.TemplateID)
	assert.Equal(t, "single_product", body.Context.Location)
}

func TestResolve_NoTemplate(t *testing.T) {
	pub := NewPublic(&fakeResolver{}, nil)

	rec := serve(http.MethodGet, "/resolve", pub.Resolve, "/resolve?is_404=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"context":{"type":"not_found","location":"not_found","is_front_page":false,"is_blog_page":false},"found":false}`,
		rec.Body.String())
}

func TestResolve_InvalidID_Returns400(t *testing.T) {
	res := &fakeResolver{}
	pub := NewPublic(res, nil)

	rec := serve(http.MethodGet, "/resolve", pub.Resolve, "/resolve?is_singular=1&post_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "post_id")
	assert.Empty(t, res.seen.Type, "resolver must not run")
}

func TestResolve_Explain(t *testing.T) {
	pub := NewPublic(&fakeResolver{id: 5, ok: true}, nil)

	rec := serve(http.MethodGet, "/resolve", pub.Resolve, "/resolve?is_search=1&explain=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var d resolver.Decision
	decodeBody(t, rec, &d)
	assert.Equal(t, int64(5), d.TemplateID)
	require.Len(t, d.Candidates, 2)
	assert.Equal(t, resolver.SkipProOnly, d.Candidates[1].Skipped)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want int
	}{
		{"no database", nil, http.StatusOK},
		{"database up", fakePinger{}, http.StatusOK},
		{"database down", fakePinger{err: errBoom}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := NewPublic(&fakeResolver{}, tt.db)
			rec := httptest.NewRecorder()
			pub.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
