// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package admin

import (
	"strings"

	"themebuilder/internal/models"
)

var targetLabels = map[models.Target]string{
	models.TargetPostType:   "Post type",
	models.TargetPostID:     "Post",
	models.TargetTerm:       "Term",
	models.TargetAuthor:     "Author",
	models.TargetFrontPage:  "Front page",
	models.TargetBlogPage:   "Blog page",
	models.TargetSearch:     "Search",
	models.TargetNotFound:   "404",
	models.TargetExpression: "Expression",
}

// Summarize renders a condition tree as one line, for example
// "Include: Post type in post, page; Exclude: Post in 12 OR Include: Search".
func Summarize(tree models.ConditionTree) string {
	var groups []string
	for _, g := range tree.Groups {
		if s := summarizeGroup(g); s != "" {
			groups = append(groups, s)
		}
	}
	if len(groups) == 0 {
		return EntireSite
	}
	return strings.Join(groups, " OR ")
}

func summarizeGroup(g models.Group) string {
	parts := make([]string, 0, len(g.Rules))
	for _, r := range g.Rules {
		parts = append(parts, summarizeRule(r))
	}
	sep := "; "
	if g.Relation == models.RelationOr {
		sep = "; or "
	}
	return strings.Join(parts, sep)
}

func summarizeRule(r models.Rule) string {
	var b strings.Builder
	if r.Type == models.RuleExclude {
		b.WriteString("Exclude: ")
	} else {
		b.WriteString("Include: ")
	}

	label, ok := targetLabels[r.Target]
	if !ok {
		label = humanize(string(r.Target))
	}
	b.WriteString(label)

	switch r.Target {
	case models.TargetFrontPage, models.TargetBlogPage, models.TargetSearch, models.TargetNotFound:
		return b.String()
	}

	if r.Operator == models.OperatorNotIn {
		b.WriteString(" not in ")
	} else {
		b.WriteString(" in ")
	}

	values := make([]string, 0, len(r.Value))
	for _, v := range r.Value {
		if v.Taxonomy != "" {
			values = append(values, v.Taxonomy+":"+v.ID)
			continue
		}
		values = append(values, v.ID)
	}
	if len(values) == 0 {
		b.WriteString("(none)")
		return b.String()
	}
	b.WriteString(strings.Join(values, ", "))
	return b.String()
}
