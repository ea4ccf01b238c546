// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package conditions evaluates Theme Builder condition trees against a page
// context. A tree is an OR of groups, each group an AND or OR of rules, and
// each rule a target/operator/value predicate with include or exclude
// polarity. All functions here are pure.
package conditions

import (
	"strconv"

	"themebuilder/internal/models"
)

// Evaluate reports whether tree matches pc. An empty tree matches everything.
func Evaluate(tree models.ConditionTree, pc models.PageContext) bool {
	if len(tree.Groups) == 0 {
		return true
	}
	for _, g := range tree.Groups {
		if matchGroup(g, pc) {
			return true
		}
	}
	return false
}

func matchGroup(g models.Group, pc models.PageContext) bool {
	if len(g.Rules) == 0 {
		return true
	}

	or := g.Relation == models.RelationOr
	for _, r := range g.Rules {
		ok := MatchRule(r, pc) != (r.Type == models.RuleExclude)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	// OR with no true rule fails; AND with no false rule passes.
	return !or
}

// MatchRule computes the raw match of r against pc, before polarity.
func MatchRule(r models.Rule, pc models.PageContext) bool {
	switch r.Target {
	case models.TargetPostType:
		return MatchIn([]string{pc.PostType}, r.Value.Strings(), r.Operator)
	case models.TargetPostID:
		return MatchIn(idSet(pc.PostID), coerceIDs(r.Value.Strings()), r.Operator)
	case models.TargetTerm:
		return MatchIn(idSet(pc.TermID), termIDs(r.Value, pc.Taxonomy), r.Operator)
	case models.TargetAuthor:
		return MatchIn(idSet(pc.AuthorID), coerceIDs(r.Value.Strings()), r.Operator)
	case models.TargetFrontPage:
		return pc.IsFrontPage
	case models.TargetBlogPage:
		return pc.IsBlogPage
	case models.TargetSearch:
		return pc.Type == models.PageSearch
	case models.TargetNotFound:
		return pc.Type == models.PageNotFound
	case models.TargetExpression:
		return matchExpression(r.Value, pc)
	}
	return false
}

// MatchIn intersects the current values with the allowed ones. Empty entries
// are ignored on both sides, and an empty allow-list never matches, whatever
// the operator.
func MatchIn(current, allowed []string, op models.Operator) bool {
	current = compact(current)
	allowed = compact(allowed)
	if len(allowed) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	intersects := false
	for _, c := range current {
		if _, ok := set[c]; ok {
			intersects = true
			break
		}
	}

	if op == models.OperatorNotIn {
		return !intersects
	}
	return intersects
}

func compact(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// idSet renders a context identifier, leaving absent ids out.
func idSet(id int64) []string {
	if id == 0 {
		return nil
	}
	return []string{strconv.FormatInt(id, 10)}
}

// coerceIDs normalizes configured ids to canonical integers so "007", "7"
// and "7.0" compare equal. Values without a leading integer are dropped.
func coerceIDs(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		n, ok := models.LeadingInt(v)
		if !ok {
			continue
		}
		out = append(out, strconv.FormatInt(n, 10))
	}
	return out
}

// termIDs keeps bare ids and the pairs that belong to the current taxonomy.
func termIDs(values models.Values, taxonomy string) []string {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if v.Taxonomy != "" && v.Taxonomy != taxonomy {
			continue
		}
		ids = append(ids, v.ID)
	}
	return coerceIDs(ids)
}
