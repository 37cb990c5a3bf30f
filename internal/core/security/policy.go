// Package security provides deployment-configurable access policies.
package security

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// PathPolicy is an optional, deployment-defined filter applied on top of the
// role-based document visibility rules. The expression is written in CEL and
// evaluated per document path with these variables in scope:
//
//	path   - full document path
//	folder - folder portion of the path
//	role   - role of the requesting principal
//
// Example: `!path.startsWith("custom-documents/restricted/") || role == "manager"`
//
// A nil *PathPolicy allows everything; admins bypass the policy entirely.
type PathPolicy struct {
	expr string
	prg  cel.Program
}

// CompilePathPolicy compiles a CEL visibility expression. The expression must
// evaluate to bool. Compile errors are surfaced at startup, never per request.
func CompilePathPolicy(expr string) (*PathPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("path", cel.StringType),
		cel.Variable("folder", cel.StringType),
		cel.Variable("role", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create policy env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile path policy: %w", iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("path policy must evaluate to bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build path policy program: %w", err)
	}

	return &PathPolicy{expr: expr, prg: prg}, nil
}

// Allows evaluates the policy for a single path. Evaluation errors deny access.
func (p *PathPolicy) Allows(path, folder, role string) bool {
	if p == nil {
		return true
	}
	out, _, err := p.prg.Eval(map[string]any{
		"path":   path,
		"folder": folder,
		"role":   role,
	})
	if err != nil {
		return false
	}
	allowed, ok := out.Value().(bool)
	return ok && allowed
}

// Expr returns the source expression, for logging at startup.
func (p *PathPolicy) Expr() string {
	if p == nil {
		return ""
	}
	return p.expr
}
