// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the PostgreSQL-backed content store: content
// entities, their metadata, site settings and the cache invalidation log.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"themebuilder/internal/models"
)

// ErrNotFound is returned by mutations that target a missing entity.
var ErrNotFound = errors.New("not found")

// PostStore handles content entities and their metadata.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, post_type, title, status, created_at, updated_at`

// scanPost scans a row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(&p.ID, &p.PostType, &p.Title, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindIDsWithAnyMeta returns the ids of every non-trashed entity of
// postType that carries at least one of keys, whatever its value.
func (s *PostStore) FindIDsWithAnyMeta(ctx context.Context, postType string, keys ...string) ([]int64, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id
		FROM posts p
		WHERE p.post_type = $1
		  AND p.status <> $2
		  AND EXISTS (
		      SELECT 1 FROM postmeta m
		      WHERE m.post_id = p.id AND m.meta_key = ANY($3)
		  )
		ORDER BY p.id
	`, postType, string(models.PostStatusTrash), keys)
	if err != nil {
		return nil, fmt.Errorf("find ids with meta: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindPost retrieves an entity by id. Returns nil if not found.
func (s *PostStore) FindPost(ctx context.Context, id int64) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// Metadata returns every meta value stored for id. A missing entity has
// no metadata.
func (s *PostStore) Metadata(ctx context.Context, id int64) (models.Meta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT meta_key, meta_value FROM postmeta WHERE post_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	meta := make(models.Meta)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// FindPosts retrieves the entities with the given ids in one query, keyed
// by id. Ids with no entity are absent from the result.
func (s *PostStore) FindPosts(ctx context.Context, ids []int64) (map[int64]*models.Post, error) {
	posts := make(map[int64]*models.Post, len(ids))
	if len(ids) == 0 {
		return posts, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts[p.ID] = p
	}
	return posts, rows.Err()
}

// MetadataByPost returns the metadata of every id in one query. Every
// requested id has an entry, empty when nothing is stored for it.
func (s *PostStore) MetadataByPost(ctx context.Context, ids []int64) (map[int64]models.Meta, error) {
	out := make(map[int64]models.Meta, len(ids))
	for _, id := range ids {
		out[id] = make(models.Meta)
	}
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id, meta_key, meta_value FROM postmeta WHERE post_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			k, v string
		)
		if err := rows.Scan(&id, &k, &v); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		out[id][k] = v
	}
	return out, rows.Err()
}

// Trash moves an entity to the trash status.
func (s *PostStore) Trash(ctx context.Context, id int64) error {
	return s.SetStatus(ctx, id, models.PostStatusTrash)
}

// SetStatus changes the status of an entity.
func (s *PostStore) SetStatus(ctx context.Context, id int64, status models.PostStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE posts SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("set status of post %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an entity and its metadata permanently.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete post %d: %w", id, ErrNotFound)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setMeta(ctx context.Context, db execer, id int64, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO postmeta (post_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, meta_key)
		DO UPDATE SET meta_value = EXCLUDED.meta_value
	`, id, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}
