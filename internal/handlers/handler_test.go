// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests: in-memory fakes for the store, repository and cache log, and a
// PostgreSQL-backed environment that is skipped when the database is
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"themebuilder/internal/cache"
	"themebuilder/internal/database"
	"themebuilder/internal/entitlement"
	"themebuilder/internal/models"
	"themebuilder/internal/repository"
	"themebuilder/internal/resolver"
	"themebuilder/internal/store"
)

// fakeStore is an in-memory TemplateStore.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*models.Post
	meta   map[int64]models.Meta
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 100,
		posts:  make(map[int64]*models.Post),
		meta:   make(map[int64]models.Meta),
	}
}

// add stores a template entity with the given metadata.
func (s *fakeStore) add(id int64, title string, meta models.Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[id] = &models.Post{ID: id, PostType: models.TemplatePostType, Title: title, Status: models.PostStatusPublish}
	s.meta[id] = meta
}

func (s *fakeStore) CreateTemplate(_ context.Context, in *models.TemplateInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	id := s.nextID
	status := models.PostStatus(in.Status)
	if status == "" {
		status = models.PostStatusPublish
	}
	s.posts[id] = &models.Post{ID: id, PostType: models.TemplatePostType, Title: in.Title, Status: status}
	meta := models.Meta{models.MetaLocation: string(in.Location), models.MetaEnabled: "1"}
	applyInput(meta, in)
	s.meta[id] = meta
	return id, nil
}

func (s *fakeStore) UpdateTemplate(_ context.Context, id int64, in *models.TemplateInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p, ok := s.posts[id]
	if !ok || p.PostType != models.TemplatePostType {
		return store.ErrNotFound
	}
	if in.Title != "" {
		p.Title = in.Title
	}
	if in.Location != "" {
		s.meta[id][models.MetaLocation] = string(in.Location)
	}
	applyInput(s.meta[id], in)
	return nil
}

func (s *fakeStore) SetTemplateEnabled(_ context.Context, id int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	s.meta[id][models.MetaEnabled] = boolString(enabled)
	return nil
}

func (s *fakeStore) Trash(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[id].Status = models.PostStatusTrash
	return nil
}

func (s *fakeStore) FindPost(_ context.Context, id int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) Metadata(_ context.Context, id int64) (models.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(models.Meta)
	for k, v := range s.meta[id] {
		out[k] = v
	}
	return out, nil
}

func applyInput(meta models.Meta, in *models.TemplateInput) {
	if in.SubLocation != nil {
		meta[models.MetaSubLocation] = *in.SubLocation
	}
	if in.Conditions != nil {
		data, _ := json.Marshal(in.Conditions)
		meta[models.MetaConditions] = string(data)
	}
	if in.Enabled != nil {
		meta[models.MetaEnabled] = boolString(*in.Enabled)
	}
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return ""
}

// fakeRepo serves templates built from a fakeStore and counts cache clears.
type fakeRepo struct {
	store   *fakeStore
	cleared int
	err     error
}

func (r *fakeRepo) ActiveTemplates(ctx context.Context) ([]models.Template, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.store.mu.Lock()
	ids := make([]int64, 0, len(r.store.posts))
	for id, p := range r.store.posts {
		if p.Status != models.PostStatusTrash {
			ids = append(ids, id)
		}
	}
	r.store.mu.Unlock()
	slices.Sort(ids)

	var out []models.Template
	for _, id := range ids {
		meta, _ := r.store.Metadata(ctx, id)
		if tmpl, ok := repository.Build(id, meta); ok {
			out = append(out, tmpl)
		}
	}
	return out, nil
}

func (r *fakeRepo) ClearCache(context.Context) { r.cleared++ }

type logEntry struct {
	entityType string
	entityID   int64
	action     string
}

// fakeCacheLog records invalidations in memory.
type fakeCacheLog struct {
	entries []logEntry
	limit   int
}

func (l *fakeCacheLog) Log(_ context.Context, entityType string, entityID int64, action string) {
	l.entries = append(l.entries, logEntry{entityType, entityID, action})
}

func (l *fakeCacheLog) RecentEntries(_ context.Context, limit int) ([]store.CacheLogEntry, error) {
	l.limit = limit
	var out []store.CacheLogEntry
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.entries[i]
		out = append(out, store.CacheLogEntry{EntityType: e.entityType, EntityID: e.entityID, Action: e.action})
	}
	return out, nil
}

// adminEnv bundles an Admin handler with its fakes.
type adminEnv struct {
	store *fakeStore
	repo  *fakeRepo
	log   *fakeCacheLog
	admin *Admin
}

func newAdminEnv(hasPro bool) *adminEnv {
	st := newFakeStore()
	repo := &fakeRepo{store: st}
	log := &fakeCacheLog{}
	return &adminEnv{
		store: st,
		repo:  repo,
		log:   log,
		admin: NewAdmin(st, repo, log, entitlement.Static(hasPro)),
	}
}

// serve routes a single request through a chi router so URL parameters
// are populated the same way the real router does.
func serve(method, pattern string, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), "body: %s", rec.Body.String())
}

var errBoom = errors.New("boom")

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB connects to the test PostgreSQL and runs migrations, skipping
// the test when the database is unreachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "themebuilder")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "themebuilder")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := database.Connect(t.Context(), dsn, database.Pool{MaxOpen: 4, MaxIdle: 1})
	if err != nil {
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(t.Context(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testEnv wires the real store, repository and resolver against the test
// database with an in-memory template cache.
type testEnv struct {
	DB       *sql.DB
	Posts    *store.PostStore
	CacheLog *store.CacheLogStore
	Repo     *repository.Repository
	Admin    *Admin
	Public   *Public

	track func(id int64)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	posts := store.NewPostStore(db)
	cacheLog := store.NewCacheLogStore(db)
	repo := repository.New(posts, cache.NewMemoryCache(time.Minute))
	pro := entitlement.Static(true)

	env := &testEnv{
		DB:       db,
		Posts:    posts,
		CacheLog: cacheLog,
		Repo:     repo,
		Admin:    NewAdmin(posts, repo, cacheLog, pro),
		Public:   NewPublic(resolver.New(repo, pro), db),
	}

	var created []int64
	t.Cleanup(func() {
		ctx := context.Background()
		for _, id := range created {
			posts.Delete(ctx, id)
		}
	})
	env.track = func(id int64) { created = append(created, id) }
	return env
}
