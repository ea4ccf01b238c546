// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pagecontext classifies a page request into the snapshot the
// Theme Builder matches templates against.
package pagecontext

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"themebuilder/internal/models"
)

// Query is the ambient state of the current request, as reported by the
// site that is rendering it.
type Query struct {
	Is404       bool
	IsSearch    bool
	IsAuthor    bool
	IsHome      bool // blog posts index
	IsSingular  bool
	IsFrontPage bool
	IsCategory  bool
	IsTag       bool
	IsTax       bool
	IsArchive   bool // any other archive: dates, post type archives

	PostID   int64
	PostType string
	AuthorID int64
	TermID   int64
	Taxonomy string
}

// Build derives the page context from q. The checks run in a fixed
// precedence order: 404, search, author, blog index, singular, archive.
// The blog index check comes before singular because a static posts page
// can carry front-page flags at the same time.
func Build(q Query) models.PageContext {
	pc := models.PageContext{
		IsFrontPage: q.IsFrontPage,
		IsBlogPage:  q.IsHome,
	}

	switch {
	case q.Is404:
		pc.Type = models.PageNotFound
		pc.Location = models.SubNotFound

	case q.IsSearch:
		pc.Type = models.PageSearch
		pc.Location = models.SubSearchResults

	case q.IsAuthor:
		pc.Type = models.PageAuthor
		pc.Location = models.SubAuthorAll
		pc.AuthorID = q.AuthorID

	case q.IsHome && !q.IsSingular:
		pc.Type = models.PageArchive
		pc.Location = models.SubArchiveBlog

	case q.IsSingular:
		pc.Type = models.PageSingle
		pc.PostID = q.PostID
		pc.PostType = q.PostType
		pc.Location = singleLocation(q.PostType)

	case q.IsCategory || q.IsTag || q.IsTax:
		pc.Type = models.PageArchive
		pc.Location = archiveLocation(q.Taxonomy)
		pc.TermID = q.TermID
		pc.Taxonomy = q.Taxonomy

	case q.IsArchive:
		pc.Type = models.PageArchive
		pc.Location = string(models.LocationArchive)

	default:
		pc.Type = models.PageSingle
		pc.Location = "unknown"
	}

	return pc
}

func singleLocation(postType string) string {
	switch postType {
	case "":
		return string(models.LocationSingle)
	case models.PostTypePost:
		return models.SubSinglePost
	case models.PostTypePage:
		return models.SubSinglePage
	}
	return "single_" + postType
}

func archiveLocation(taxonomy string) string {
	switch taxonomy {
	case "":
		return string(models.LocationArchive)
	case models.TaxonomyCategory:
		return models.SubArchiveCat
	case models.TaxonomyTag:
		return models.SubArchiveTag
	}
	return "archive_" + taxonomy
}

// ParseQuery decodes the query-string form of a Query. Flags accept the
// usual truthy spellings; identifiers must be integers when present.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Is404:       flag(v, "is_404"),
		IsSearch:    flag(v, "is_search"),
		IsAuthor:    flag(v, "is_author"),
		IsHome:      flag(v, "is_home"),
		IsSingular:  flag(v, "is_singular"),
		IsFrontPage: flag(v, "is_front_page"),
		IsCategory:  flag(v, "is_category"),
		IsTag:       flag(v, "is_tag"),
		IsTax:       flag(v, "is_tax"),
		IsArchive:   flag(v, "is_archive"),
		PostType:    strings.TrimSpace(v.Get("post_type")),
		Taxonomy:    strings.TrimSpace(v.Get("taxonomy")),
	}

	var err error
	if q.PostID, err = id(v, "post_id"); err != nil {
		return Query{}, err
	}
	if q.AuthorID, err = id(v, "author_id"); err != nil {
		return Query{}, err
	}
	if q.TermID, err = id(v, "term_id"); err != nil {
		return Query{}, err
	}

	// Category and tag views imply their taxonomy.
	if q.Taxonomy == "" {
		switch {
		case q.IsCategory:
			q.Taxonomy = models.TaxonomyCategory
		case q.IsTag:
			q.Taxonomy = models.TaxonomyTag
		}
	}
	return q, nil
}

func flag(v url.Values, key string) bool {
	if _, ok := v[key]; !ok {
		return false
	}
	return models.ParseFlag(v.Get(key)) == models.FlagTrue
}

func id(v url.Values, key string) (int64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
