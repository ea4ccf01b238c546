// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package conditions

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"

	"themebuilder/internal/models"
)

// Expression rules carry a CEL expression as their single value. The
// expression sees the page context as plain variables and must return a bool.

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error

	// programs memoizes compiled expressions, including failed ones.
	programs sync.Map
)

type compiled struct {
	program cel.Program
	err     error
}

func environment() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("page_type", cel.StringType),
			cel.Variable("location", cel.StringType),
			cel.Variable("post_id", cel.IntType),
			cel.Variable("post_type", cel.StringType),
			cel.Variable("author_id", cel.IntType),
			cel.Variable("term_id", cel.IntType),
			cel.Variable("taxonomy", cel.StringType),
			cel.Variable("is_front_page", cel.BoolType),
			cel.Variable("is_blog_page", cel.BoolType),
		)
	})
	return env, envErr
}

// CompileExpression checks that expr is a valid boolean expression over the
// page context variables.
func CompileExpression(expr string) error {
	_, err := program(expr)
	return err
}

func program(expr string) (cel.Program, error) {
	if c, ok := programs.Load(expr); ok {
		entry := c.(compiled)
		return entry.program, entry.err
	}

	prg, err := compileProgram(expr)
	programs.Store(expr, compiled{program: prg, err: err})
	return prg, err
}

func compileProgram(expr string) (cel.Program, error) {
	e, err := environment()
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}
	ast, iss := e.Parse(expr)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	checked, iss := e.Check(ast)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if !checked.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %s", checked.OutputType())
	}
	return e.Program(checked)
}

// matchExpression evaluates the first value of an expression rule. Compile
// and runtime failures count as no match.
func matchExpression(values models.Values, pc models.PageContext) bool {
	if len(values) == 0 || values[0].ID == "" {
		return false
	}
	expr := values[0].ID

	prg, err := program(expr)
	if err != nil {
		slog.Debug("condition expression rejected", "expression", expr, "error", err)
		return false
	}

	out, _, err := prg.Eval(map[string]any{
		"page_type":     string(pc.Type),
		"location":      pc.Location,
		"post_id":       pc.PostID,
		"post_type":     pc.PostType,
		"author_id":     pc.AuthorID,
		"term_id":       pc.TermID,
		"taxonomy":      pc.Taxonomy,
		"is_front_page": pc.IsFrontPage,
		"is_blog_page":  pc.IsBlogPage,
	})
	if err != nil {
		slog.Debug("condition expression failed", "expression", expr, "error", err)
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}
