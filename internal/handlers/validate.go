package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"themebuilder/internal/conditions"
	"themebuilder/internal/models"
	"themebuilder/internal/slug"
)

// Validation limits for template fields.
const (
	maxTitleLen       = 200
	maxSubLocationLen = 100
	minPriority       = -9999
	maxPriority       = 9999
	maxGroups         = 50
	maxRulesPerGroup  = 50
	maxRuleValues     = 500
	maxExpressionLen  = 2_000
)

// validateTemplate checks template input and returns the first error found.
// On create the title and location are required; on update every field is
// optional.
func validateTemplate(in *models.TemplateInput, creating bool) string {
	title := strings.TrimSpace(in.Title)
	if creating && title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Sprintf("Title is too long (max %d characters).", maxTitleLen)
	}

	if in.Status != "" {
		status := models.PostStatus(in.Status)
		if !status.Valid() {
			return fmt.Sprintf("Unknown status %q.", in.Status)
		}
		if status == models.PostStatusTrash {
			return "Use DELETE to move a template to the trash."
		}
	}

	if creating && in.Location == "" {
		return "Location is required."
	}
	if in.Location != "" && !in.Location.Valid() {
		return fmt.Sprintf("Unknown location %q.", in.Location)
	}

	if in.SubLocation != nil {
		key := slug.Key(*in.SubLocation)
		if key == "" && strings.TrimSpace(*in.SubLocation) != "" {
			return "Sub-location must contain letters or digits."
		}
		if len(key) > maxSubLocationLen {
			return fmt.Sprintf("Sub-location is too long (max %d characters).", maxSubLocationLen)
		}
	}

	if in.Priority != nil && (*in.Priority < minPriority || *in.Priority > maxPriority) {
		return fmt.Sprintf("Priority must be between %d and %d.", minPriority, maxPriority)
	}

	if in.Conditions != nil {
		return validateConditions(*in.Conditions)
	}
	return ""
}

// validateConditions rejects trees the evaluator would silently ignore,
// so editors learn about typos instead of getting a template that never
// or always matches.
func validateConditions(tree models.ConditionTree) string {
	if len(tree.Groups) > maxGroups {
		return fmt.Sprintf("Too many condition groups (max %d).", maxGroups)
	}
	for gi, g := range tree.Groups {
		if len(g.Rules) > maxRulesPerGroup {
			return fmt.Sprintf("Group %d has too many rules (max %d).", gi+1, maxRulesPerGroup)
		}
		if !oneOf(string(g.Relation), string(models.RelationAnd), string(models.RelationOr)) {
			return fmt.Sprintf("Group %d: relation must be AND or OR, got %q.", gi+1, g.Relation)
		}
		for ri, r := range g.Rules {
			where := fmt.Sprintf("Group %d rule %d", gi+1, ri+1)
			if !r.Target.Known() {
				return fmt.Sprintf("%s: unknown target %q.", where, r.Target)
			}
			if !oneOf(string(r.Operator), string(models.OperatorIn), string(models.OperatorNotIn)) {
				return fmt.Sprintf("%s: operator must be in or not_in, got %q.", where, r.Operator)
			}
			if !oneOf(string(r.Type), string(models.RuleInclude), string(models.RuleExclude)) {
				return fmt.Sprintf("%s: type must be include or exclude, got %q.", where, r.Type)
			}
			if len(r.Value) > maxRuleValues {
				return fmt.Sprintf("%s: too many values (max %d).", where, maxRuleValues)
			}
			if r.Target != models.TargetExpression {
				continue
			}
			if len(r.Value) != 1 {
				return fmt.Sprintf("%s: an expression rule takes exactly one value.", where)
			}
			expr := r.Value[0].ID
			if len(expr) > maxExpressionLen {
				return fmt.Sprintf("%s: expression is too long (max %d characters).", where, maxExpressionLen)
			}
			if err := conditions.CompileExpression(expr); err != nil {
				return fmt.Sprintf("%s: %v", where, err)
			}
		}
	}
	return ""
}

// oneOf reports whether v is empty or matches one of allowed, ignoring case.
func oneOf(v string, allowed ...string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
