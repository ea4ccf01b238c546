// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// TemplatePostType is the content kind Theme Builder templates are stored as.
const TemplatePostType = "tb_template"

// Metadata keys carried by a Theme Builder template.
const (
	MetaEnabled     = "_tb_enabled"
	MetaLocation    = "_tb_location"
	MetaSubLocation = "_tb_sub_location"
	MetaConditions  = "_tb_conditions"
	MetaPriority    = "_tb_priority"
	MetaIsProOnly   = "_tb_is_pro_only"
)

// DefaultPriority applies when a template stores no usable priority.
const DefaultPriority = 10

// Location is the coarse bucket a template targets.
type Location string

const (
	LocationSingle   Location = "single"
	LocationArchive  Location = "archive"
	LocationSearch   Location = "search"
	LocationNotFound Location = "not_found"
	LocationAuthor   Location = "author"
)

// Valid reports whether l is one of the five template locations.
func (l Location) Valid() bool {
	switch l {
	case LocationSingle, LocationArchive, LocationSearch, LocationNotFound, LocationAuthor:
		return true
	}
	return false
}

// Sub-location labels with special meaning during location matching.
const (
	SubSinglePost     = "single_post"
	SubSinglePage     = "single_page"
	SubSingleCPT      = "single_cpt"
	SubArchiveBlog    = "archive_blog"
	SubArchiveCat     = "archive_category"
	SubArchiveTag     = "archive_tag"
	SubArchiveTax     = "archive_tax"
	SubSearchResults  = "search_results"
	SubAuthorAll      = "author_all"
	SubAuthorSpecific = "author_specific"
	SubNotFound       = "not_found"
)

// Template is a Theme Builder template as seen by the resolver: a content
// entity with its targeting metadata already normalized.
type Template struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Status      string        `json:"status"`
	Location    Location      `json:"location"`
	SubLocation string        `json:"sub_location"`
	Conditions  ConditionTree `json:"conditions"`
	Priority    int           `json:"priority"`
	IsProOnly   bool          `json:"is_pro_only"`
	Enabled     bool          `json:"enabled"`
}

// TemplateInput carries the fields an editor may set on a template.
// Nil pointers leave the stored value untouched on update.
type TemplateInput struct {
	Title       string         `json:"title"`
	Status      string         `json:"status"`
	Location    Location       `json:"location"`
	SubLocation *string        `json:"sub_location"`
	Conditions  *ConditionTree `json:"conditions"`
	Priority    *int           `json:"priority"`
	IsProOnly   *bool          `json:"is_pro_only"`
	Enabled     *bool          `json:"enabled"`
}
