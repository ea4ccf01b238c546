// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package repository

import "themebuilder/internal/models"

// MatchesLocation reports whether t's location and sub-location target the
// page described by pc.
func MatchesLocation(t models.Template, pc models.PageContext) bool {
	sub := t.SubLocation

	switch pc.Type {
	case models.PageNotFound:
		return t.Location == models.LocationNotFound || sub == models.SubNotFound

	case models.PageSearch:
		return t.Location == models.LocationSearch || sub == models.SubSearchResults

	case models.PageAuthor:
		return sub == models.SubAuthorAll || sub == models.SubAuthorSpecific

	case models.PageSingle:
		if t.Location != models.LocationSingle {
			return false
		}
		switch {
		case sub == "":
			return true
		case sub == models.SubSinglePost:
			return pc.PostType == models.PostTypePost
		case sub == models.SubSinglePage:
			return pc.PostType == models.PostTypePage
		case sub == models.SubSingleCPT:
			return pc.PostType != "" && pc.PostType != models.PostTypePost && pc.PostType != models.PostTypePage
		}
		return pc.PostType != "" && sub == "single_"+pc.PostType

	case models.PageArchive:
		if t.Location != models.LocationArchive {
			return false
		}
		switch {
		case sub == "":
			return true
		case sub == models.SubArchiveBlog:
			return pc.IsBlogPage
		case sub == models.SubArchiveCat:
			return pc.Taxonomy == models.TaxonomyCategory
		case sub == models.SubArchiveTag:
			return pc.Taxonomy == models.TaxonomyTag
		case sub == models.SubArchiveTax:
			return pc.Taxonomy != ""
		}
		return pc.Taxonomy != "" && sub == "archive_"+pc.Taxonomy
	}

	return false
}
