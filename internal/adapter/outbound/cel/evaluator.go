// Package cel compiles readiness expressions with CEL.
// Every declared field is a string variable; missing fields evaluate as "".
package cel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
)

// maxExpressionLength is the maximum allowed length for a readiness expression.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit.
const maxCostBudget = 10_000

// maxNestingDepth is the maximum allowed parenthesis/bracket nesting depth.
const maxNestingDepth = 20

// evalTimeout is the maximum time allowed for a single evaluation.
const evalTimeout = time.Second

// interruptCheckFreq is how often (in comprehension iterations) cancellation is checked.
const interruptCheckFreq = 100

// Evaluator compiles readiness expressions.
type Evaluator struct{}

var _ outbound.ReadinessCompiler = (*Evaluator)(nil)

// NewEvaluator creates a new readiness evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Predicate is a compiled readiness expression.
type Predicate struct {
	expr   string
	fields []string
	prg    cel.Program
}

var _ outbound.Predicate = (*Predicate)(nil)

// always is the predicate of an empty expression.
type always struct{}

func (always) Ready(map[string]string) (bool, error) { return true, nil }

// Compile type-checks expr against fields. The expression must yield a bool.
func (e *Evaluator) Compile(expr string, fields []string) (outbound.Predicate, error) {
	if expr == "" {
		return always{}, nil
	}
	if err := validate(expr); err != nil {
		return nil, err
	}

	opts := make([]cel.EnvOption, 0, len(fields))
	for _, f := range fields {
		opts = append(opts, cel.Variable(f, cel.StringType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create readiness environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation failed: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must return bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
		cel.InterruptCheckFrequency(interruptCheckFreq),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}

	return &Predicate{expr: expr, fields: append([]string(nil), fields...), prg: prg}, nil
}

// Ready evaluates the predicate against the current field values.
func (p *Predicate) Ready(values map[string]string) (bool, error) {
	activation := make(map[string]any, len(p.fields))
	for _, f := range p.fields {
		activation[f] = values[f]
	}

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	result, _, err := p.prg.ContextEval(ctx, activation)
	if err != nil {
		return false, fmt.Errorf("evaluation of %q failed: %w", p.expr, err)
	}

	ready, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean, got %T", result.Value())
	}
	return ready, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	return p.expr
}

func validate(expr string) error {
	if len(expr) > maxExpressionLength {
		return fmt.Errorf("expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}
	if err := validateNesting(expr); err != nil {
		return err
	}
	return nil
}

// validateNesting checks that the expression does not exceed the maximum
// nesting depth for parentheses, brackets, and braces.
func validateNesting(expr string) error {
	var depth, maxDepth int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return errors.New("unbalanced closing bracket")
			}
		}
	}
	if maxDepth > maxNestingDepth {
		return fmt.Errorf("expression nesting too deep: %d levels (max %d)", maxDepth, maxNestingDepth)
	}
	return nil
}
