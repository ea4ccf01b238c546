package database

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"gopkg.in/yaml.v3"

	"themebuilder/internal/conditions"
	"themebuilder/internal/models"
	"themebuilder/internal/slug"
)

// DefaultSeed is the development fixture used when no seed file is set.
//
//go:embed seed.yaml
var DefaultSeed []byte

// SeedFile is the YAML layout of a template fixture.
type SeedFile struct {
	Settings  map[string]string `yaml:"settings"`
	Templates []SeedTemplate    `yaml:"templates"`
}

// SeedTemplate describes one template of a fixture. Conditions use the
// same shape as the stored JSON.
type SeedTemplate struct {
	Title       string `yaml:"title"`
	Status      string `yaml:"status"`
	Location    string `yaml:"location"`
	SubLocation string `yaml:"sub_location"`
	Priority    int    `yaml:"priority"`
	ProOnly     bool   `yaml:"pro_only"`
	Enabled     *bool  `yaml:"enabled"`
	Conditions  any    `yaml:"conditions"`
}

// ParseSeed decodes a YAML fixture.
func ParseSeed(data []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, t := range f.Templates {
		if t.Location == "" {
			return nil, fmt.Errorf("parse seed: template %d (%q) has no location", i, t.Title)
		}
	}
	return &f, nil
}

// Seed populates the database with the templates and settings of a YAML
// fixture. It is a no-op when any Theme Builder template already exists.
func Seed(ctx context.Context, db *sql.DB, data []byte) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE post_type = $1`, models.TemplatePostType,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("seed check templates: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	f, err := ParseSeed(data)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for k, v := range f.Settings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO site_settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, k, v)
		if err != nil {
			return fmt.Errorf("seed setting %s: %w", k, err)
		}
	}

	for _, t := range f.Templates {
		if err := seedTemplate(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with theme builder templates",
		"templates", len(f.Templates),
		"settings", len(f.Settings),
	)
	return nil
}

func seedTemplate(ctx context.Context, tx *sql.Tx, t SeedTemplate) error {
	status := t.Status
	if status == "" {
		status = string(models.PostStatusPublish)
	}

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO posts (post_type, title, status) VALUES ($1, $2, $3) RETURNING id
	`, models.TemplatePostType, t.Title, status).Scan(&id)
	if err != nil {
		return fmt.Errorf("seed template %q: %w", t.Title, err)
	}

	conds, err := json.Marshal(conditions.Normalize(t.Conditions))
	if err != nil {
		return fmt.Errorf("seed template %q conditions: %w", t.Title, err)
	}

	meta := map[string]string{
		models.MetaLocation:    t.Location,
		models.MetaSubLocation: slug.Key(t.SubLocation),
		models.MetaConditions:  string(conds),
	}
	if t.Priority != 0 {
		meta[models.MetaPriority] = strconv.Itoa(t.Priority)
	}
	if t.ProOnly {
		meta[models.MetaIsProOnly] = "1"
	}
	// Fixtures may leave the enabled marker out to mimic legacy entities.
	if t.Enabled != nil {
		meta[models.MetaEnabled] = ""
		if *t.Enabled {
			meta[models.MetaEnabled] = "1"
		}
	}

	for k, v := range meta {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)
		`, id, k, v)
		if err != nil {
			return fmt.Errorf("seed template %q meta %s: %w", t.Title, k, err)
		}
	}
	return nil
}
