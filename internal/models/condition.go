// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Target names the request dimension a rule inspects.
type Target string

const (
	TargetPostType   Target = "post_type"
	TargetPostID     Target = "post_id"
	TargetTerm       Target = "term"
	TargetAuthor     Target = "author"
	TargetFrontPage  Target = "front_page"
	TargetBlogPage   Target = "blog_page"
	TargetSearch     Target = "search"
	TargetNotFound   Target = "404"
	TargetExpression Target = "expression"
)

// Known reports whether the evaluator understands t.
func (t Target) Known() bool {
	switch t {
	case TargetPostType, TargetPostID, TargetTerm, TargetAuthor, TargetFrontPage,
		TargetBlogPage, TargetSearch, TargetNotFound, TargetExpression:
		return true
	}
	return false
}

// Operator decides whether a rule wants the context value inside or outside
// its configured value set.
type Operator string

const (
	OperatorIn    Operator = "in"
	OperatorNotIn Operator = "not_in"
)

// RuleType is the polarity of a rule. Exclude rules negate their raw match.
type RuleType string

const (
	RuleInclude RuleType = "include"
	RuleExclude RuleType = "exclude"
)

// Relation folds the rules of a group together.
type Relation string

const (
	RelationAnd Relation = "AND"
	RelationOr  Relation = "OR"
)

// ConditionTree is an OR of groups. An empty tree matches every request.
type ConditionTree struct {
	Groups []Group `json:"groups"`
}

// RuleCount returns the number of rules across all groups. The resolver
// uses it as the specificity of a template.
func (t ConditionTree) RuleCount() int {
	n := 0
	for _, g := range t.Groups {
		n += len(g.Rules)
	}
	return n
}

// IsEmpty reports whether the tree has no groups.
func (t ConditionTree) IsEmpty() bool {
	return len(t.Groups) == 0
}

// Group is an AND or OR of rules. An empty group matches.
type Group struct {
	Relation Relation `json:"relation"`
	Rules    []Rule   `json:"rules"`
}

// Rule is a single predicate against the page context.
type Rule struct {
	Target   Target   `json:"target"`
	Operator Operator `json:"operator"`
	Value    Values   `json:"value"`
	Type     RuleType `json:"type"`
}

// RuleValue is one entry of a rule's value set. Term rules may carry the
// taxonomy the id belongs to; every other target only uses ID.
type RuleValue struct {
	ID       string `json:"id"`
	Taxonomy string `json:"taxonomy,omitempty"`
}

// Values is the value set of a rule. Stored conditions hold either a single
// scalar or a list, so decoding accepts both.
type Values []RuleValue

// Strings returns the bare ids of the value set.
func (v Values) Strings() []string {
	out := make([]string, 0, len(v))
	for _, rv := range v {
		out = append(out, rv.ID)
	}
	return out
}

// StringValues builds a value set from plain ids.
func StringValues(ids ...string) Values {
	out := make(Values, 0, len(ids))
	for _, id := range ids {
		out = append(out, RuleValue{ID: id})
	}
	return out
}

// MarshalJSON writes plain ids as scalars and term pairs as objects.
func (v Values) MarshalJSON() ([]byte, error) {
	items := make([]any, 0, len(v))
	for _, rv := range v {
		if rv.Taxonomy == "" {
			items = append(items, rv.ID)
			continue
		}
		items = append(items, map[string]string{"taxonomy": rv.Taxonomy, "id": rv.ID})
	}
	return json.Marshal(items)
}

// UnmarshalJSON accepts a scalar, an object pair, or a list of either.
// Entries of an unusable shape are dropped rather than failing the rule.
func (v *Values) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*v = nil
	if list, ok := raw.([]any); ok {
		for _, item := range list {
			if rv, ok := toRuleValue(item); ok {
				*v = append(*v, rv)
			}
		}
		return nil
	}
	if rv, ok := toRuleValue(raw); ok {
		*v = Values{rv}
	}
	return nil
}

func toRuleValue(item any) (RuleValue, bool) {
	switch x := item.(type) {
	case map[string]any:
		id, ok := scalarString(x["id"])
		if !ok {
			return RuleValue{}, false
		}
		tax, _ := x["taxonomy"].(string)
		return RuleValue{ID: id, Taxonomy: tax}, true
	default:
		id, ok := scalarString(x)
		if !ok {
			return RuleValue{}, false
		}
		return RuleValue{ID: id}, true
	}
}

func scalarString(item any) (string, bool) {
	switch x := item.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		if x {
			return "1", true
		}
		return "", true
	}
	return "", false
}

// LeadingInt reads a stored number leniently: surrounding space is ignored,
// floats are truncated ("7.0", "1e3") and trailing junk after a leading
// integer is ignored ("5abc" is 5). It reports false when s has no leading
// digits or the value does not fit in an int64.
func LeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
