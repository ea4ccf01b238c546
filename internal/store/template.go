// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"themebuilder/internal/models"
)

// CreateTemplate inserts a Theme Builder template and its targeting
// metadata in one transaction. New templates are enabled unless the input
// says otherwise.
func (s *PostStore) CreateTemplate(ctx context.Context, in *models.TemplateInput) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	status := in.Status
	if status == "" {
		status = string(models.PostStatusPublish)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (post_type, title, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`, models.TemplatePostType, in.Title, status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create template: %w", err)
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	meta := map[string]string{
		models.MetaLocation: string(in.Location),
		models.MetaEnabled:  boolMeta(enabled),
	}
	if err := templateMeta(in, meta); err != nil {
		return 0, err
	}
	for k, v := range meta {
		if err := setMeta(ctx, tx, id, k, v); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit template: %w", err)
	}
	return id, nil
}

// UpdateTemplate applies the set fields of in to an existing template.
func (s *PostStore) UpdateTemplate(ctx context.Context, id int64, in *models.TemplateInput) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE posts SET
			title = COALESCE(NULLIF($1, ''), title),
			status = COALESCE(NULLIF($2, ''), status),
			updated_at = NOW()
		WHERE id = $3 AND post_type = $4
	`, in.Title, in.Status, id, models.TemplatePostType)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("update template %d: %w", id, ErrNotFound)
	}

	meta := make(map[string]string)
	if in.Location != "" {
		meta[models.MetaLocation] = string(in.Location)
	}
	if in.Enabled != nil {
		meta[models.MetaEnabled] = boolMeta(*in.Enabled)
	}
	if err := templateMeta(in, meta); err != nil {
		return err
	}
	for k, v := range meta {
		if err := setMeta(ctx, tx, id, k, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetTemplateEnabled stores the enabled marker of a template.
func (s *PostStore) SetTemplateEnabled(ctx context.Context, id int64, enabled bool) error {
	p, err := s.FindPost(ctx, id)
	if err != nil {
		return err
	}
	if p == nil || p.PostType != models.TemplatePostType {
		return fmt.Errorf("toggle template %d: %w", id, ErrNotFound)
	}
	return setMeta(ctx, s.db, id, models.MetaEnabled, boolMeta(enabled))
}

// templateMeta adds the optional targeting fields of in to meta.
func templateMeta(in *models.TemplateInput, meta map[string]string) error {
	if in.SubLocation != nil {
		meta[models.MetaSubLocation] = *in.SubLocation
	}
	if in.Priority != nil {
		meta[models.MetaPriority] = strconv.Itoa(*in.Priority)
	}
	if in.IsProOnly != nil {
		meta[models.MetaIsProOnly] = boolMeta(*in.IsProOnly)
	}
	if in.Conditions != nil {
		data, err := json.Marshal(in.Conditions)
		if err != nil {
			return fmt.Errorf("encode conditions: %w", err)
		}
		meta[models.MetaConditions] = string(data)
	}
	return nil
}

func boolMeta(b bool) string {
	if b {
		return "1"
	}
	return ""
}
