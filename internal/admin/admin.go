// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package admin builds the rows of the template list table shown to
// editors. It only formats; the data comes from the repository.
package admin

import (
	"cmp"
	"slices"
	"strings"

	"themebuilder/internal/models"
)

// EntireSite summarizes a template without conditions.
const EntireSite = "Entire site"

// Row is one line of the template list.
type Row struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Status           string `json:"status"`
	Location         string `json:"location"`
	LocationLabel    string `json:"location_label"`
	SubLocation      string `json:"sub_location"`
	SubLocationLabel string `json:"sub_location_label"`
	Conditions       string `json:"conditions"`
	Priority         int    `json:"priority"`
	Enabled          bool   `json:"enabled"`
	ProOnly          bool   `json:"pro_only"`
	Locked           bool   `json:"locked"`
}

// BuildRows formats templates for the list table, ordered by priority
// then id. Pro-only rows are locked when the site has no pro entitlement.
func BuildRows(templates []models.Template, hasPro bool) []Row {
	rows := make([]Row, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, Row{
			ID:               t.ID,
			Title:            t.Title,
			Status:           t.Status,
			Location:         string(t.Location),
			LocationLabel:    LocationLabel(t.Location),
			SubLocation:      t.SubLocation,
			SubLocationLabel: SubLocationLabel(t.SubLocation),
			Conditions:       Summarize(t.Conditions),
			Priority:         t.Priority,
			Enabled:          t.Enabled,
			ProOnly:          t.IsProOnly,
			Locked:           t.IsProOnly && !hasPro,
		})
	}

	slices.SortFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rows
}

var locationLabels = map[models.Location]string{
	models.LocationSingle:   "Single",
	models.LocationArchive:  "Archive",
	models.LocationSearch:   "Search results",
	models.LocationNotFound: "404 page",
	models.LocationAuthor:   "Author archive",
}

var subLocationLabels = map[string]string{
	models.SubSinglePost:     "Posts",
	models.SubSinglePage:     "Pages",
	models.SubSingleCPT:      "Custom post types",
	models.SubArchiveBlog:    "Blog index",
	models.SubArchiveCat:     "Category archives",
	models.SubArchiveTag:     "Tag archives",
	models.SubArchiveTax:     "Taxonomy archives",
	models.SubSearchResults:  "Search results",
	models.SubAuthorAll:      "All authors",
	models.SubAuthorSpecific: "Specific author",
	models.SubNotFound:       "404 page",
}

// LocationLabel returns the display name of a location.
func LocationLabel(l models.Location) string {
	if label, ok := locationLabels[l]; ok {
		return label
	}
	return humanize(string(l))
}

// SubLocationLabel returns the display name of a sub-location. Dynamic
// sub-locations such as single_product name their content type.
func SubLocationLabel(sub string) string {
	if sub == "" {
		return "All"
	}
	if label, ok := subLocationLabels[sub]; ok {
		return label
	}
	if pt, ok := strings.CutPrefix(sub, "single_"); ok {
		return "Single " + humanize(pt)
	}
	if tax, ok := strings.CutPrefix(sub, "archive_"); ok {
		return humanize(tax) + " archives"
	}
	return humanize(sub)
}

func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
