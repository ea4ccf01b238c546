// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// PageType is the resolved kind of the current request.
type PageType string

const (
	PageSingle   PageType = "single"
	PageArchive  PageType = "archive"
	PageSearch   PageType = "search"
	PageNotFound PageType = "not_found"
	PageAuthor   PageType = "author"
)

// Built-in content types that get dedicated sub-locations.
const (
	PostTypePost = "post"
	PostTypePage = "page"
)

// Built-in taxonomies that get dedicated sub-locations.
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "post_tag"
)

// PageContext is an immutable snapshot of what is being requested.
// Identifier fields use their zero value for "not relevant to this view".
type PageContext struct {
	Type        PageType `json:"type"`
	Location    string   `json:"location"`
	PostID      int64    `json:"post_id,omitempty"`
	PostType    string   `json:"post_type,omitempty"`
	AuthorID    int64    `json:"author_id,omitempty"`
	TermID      int64    `json:"term_id,omitempty"`
	Taxonomy    string   `json:"taxonomy,omitempty"`
	IsFrontPage bool     `json:"is_front_page"`
	IsBlogPage  bool     `json:"is_blog_page"`
}
