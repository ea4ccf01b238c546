// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package conditions

import (
	"bytes"
	"encoding/json"
	"strings"

	"themebuilder/internal/models"
)

// Normalize turns a stored conditions value into a well-formed tree. It
// accepts a tree, a JSON string or bytes, or any JSON-encodable structure.
// Input of the wrong shape yields an empty tree, which matches every
// request: a broken condition shows the template rather than hiding it.
// A single group or rule that cannot be decoded makes the whole tree
// malformed, since dropping it could narrow what the tree matches.
func Normalize(raw any) models.ConditionTree {
	switch v := raw.(type) {
	case nil:
		return models.ConditionTree{Groups: []models.Group{}}
	case models.ConditionTree:
		return clean(v)
	case *models.ConditionTree:
		if v == nil {
			return models.ConditionTree{Groups: []models.Group{}}
		}
		return clean(*v)
	case string:
		return decode([]byte(v))
	case []byte:
		return decode(v)
	case json.RawMessage:
		return decode(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return models.ConditionTree{Groups: []models.Group{}}
		}
		return decode(data)
	}
}

type rawTree struct {
	Groups []json.RawMessage `json:"groups"`
}

type rawGroup struct {
	Relation string            `json:"relation"`
	Rules    []json.RawMessage `json:"rules"`
}

func decode(data []byte) models.ConditionTree {
	tree := models.ConditionTree{Groups: []models.Group{}}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return tree
	}

	var rt rawTree
	if err := json.Unmarshal(data, &rt); err != nil {
		return tree
	}

	for _, rawG := range rt.Groups {
		var rg rawGroup
		if err := json.Unmarshal(rawG, &rg); err != nil {
			return models.ConditionTree{Groups: []models.Group{}}
		}
		g := models.Group{Relation: models.Relation(rg.Relation), Rules: []models.Rule{}}
		for _, rawR := range rg.Rules {
			var r models.Rule
			if err := json.Unmarshal(rawR, &r); err != nil {
				return models.ConditionTree{Groups: []models.Group{}}
			}
			g.Rules = append(g.Rules, r)
		}
		tree.Groups = append(tree.Groups, g)
	}
	return clean(tree)
}

// clean fills the documented defaults in place of missing or unknown
// relation, operator and polarity values.
func clean(tree models.ConditionTree) models.ConditionTree {
	out := models.ConditionTree{Groups: make([]models.Group, 0, len(tree.Groups))}
	for _, g := range tree.Groups {
		ng := models.Group{Relation: models.RelationAnd, Rules: make([]models.Rule, 0, len(g.Rules))}
		if strings.EqualFold(string(g.Relation), string(models.RelationOr)) {
			ng.Relation = models.RelationOr
		}
		for _, r := range g.Rules {
			nr := models.Rule{
				Target:   models.Target(strings.TrimSpace(string(r.Target))),
				Operator: models.OperatorIn,
				Value:    r.Value,
				Type:     models.RuleInclude,
			}
			if strings.EqualFold(string(r.Operator), string(models.OperatorNotIn)) {
				nr.Operator = models.OperatorNotIn
			}
			if strings.EqualFold(string(r.Type), string(models.RuleExclude)) {
				nr.Type = models.RuleExclude
			}
			ng.Rules = append(ng.Rules, nr)
		}
		out.Groups = append(out.Groups, ng)
	}
	return out
}
