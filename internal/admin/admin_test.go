// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themebuilder/internal/models"
)

func TestBuildRowsOrderAndLock(t *testing.T) {
	templates := []models.Template{
		{ID: 3, Title: "C", Location: models.LocationSingle, Priority: 10},
		{ID: 1, Title: "A", Location: models.LocationArchive, Priority: 10, IsProOnly: true},
		{ID: 2, Title: "B", Location: models.LocationSearch, Priority: 5, Enabled: true},
	}

	rows := BuildRows(templates, false)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.True(t, rows[1].Locked)
	assert.False(t, rows[0].Locked)

	rows = BuildRows(templates, true)
	for _, r := range rows {
		assert.False(t, r.Locked)
	}
}

func TestBuildRowsLabels(t *testing.T) {
	rows := BuildRows([]models.Template{
		{ID: 1, Location: models.LocationSingle, SubLocation: "single_product"},
	}, true)
	require.Len(t, rows, 1)
	assert.Equal(t, "Single", rows[0].LocationLabel)
	assert.Equal(t, "Single Product", rows[0].SubLocationLabel)
	assert.Equal(t, EntireSite, rows[0].Conditions)
}

func TestSubLocationLabel(t *testing.T) {
	tests := map[string]string{
		"":                 "All",
		"single_post":      "Posts",
		"archive_category": "Category archives",
		"archive_genre":    "Genre archives",
		"author_all":       "All authors",
		"weird":            "Weird",
	}
	for in, want := range tests {
		assert.Equal(t, want, SubLocationLabel(in), "sub-location %q", in)
	}
}

func TestSummarize(t *testing.T) {
	tree := models.ConditionTree{Groups: []models.Group{
		{
			Relation: models.RelationAnd,
			Rules: []models.Rule{
				{Target: models.TargetPostType, Operator: models.OperatorIn, Value: models.StringValues("post", "page"), Type: models.RuleInclude},
				{Target: models.TargetPostID, Operator: models.OperatorIn, Value: models.StringValues("12"), Type: models.RuleExclude},
			},
		},
		{
			Relation: models.RelationOr,
			Rules: []models.Rule{
				{Target: models.TargetSearch, Type: models.RuleInclude},
				{Target: models.TargetTerm, Operator: models.OperatorNotIn, Value: models.Values{{ID: "3", Taxonomy: "category"}}, Type: models.RuleInclude},
			},
		},
	}}

	want := "Include: Post type in post, page; Exclude: Post in 12 OR " +
		"Include: Search; or Include: Term not in category:3"
	assert.Equal(t, want, Summarize(tree))
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, EntireSite, Summarize(models.ConditionTree{}))
	assert.Equal(t, EntireSite, Summarize(models.ConditionTree{Groups: []models.Group{{}}}))
}
