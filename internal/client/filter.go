package client

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/rzbill/partysearch/internal/feed"
)

// PartyFilter is a compiled CEL expression evaluated per party. A nil filter
// matches everything.
//
// Variables: map_id, district, sender, message, search_type, level, primary,
// secondary, party_size, hero_count, hardmode, party_id.
type PartyFilter struct {
	expr string
	prog cel.Program
}

// CompileFilter parses and type-checks expr. An empty expression yields a nil
// filter.
func CompileFilter(expr string) (*PartyFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("map_id", cel.IntType),
		cel.Variable("district", cel.IntType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("search_type", cel.IntType),
		cel.Variable("level", cel.IntType),
		cel.Variable("primary", cel.IntType),
		cel.Variable("secondary", cel.IntType),
		cel.Variable("party_size", cel.IntType),
		cel.Variable("hero_count", cel.IntType),
		cel.Variable("hardmode", cel.IntType),
		cel.Variable("party_id", cel.IntType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, &FilterTypeError{Expr: expr, Type: ast.OutputType().String()}
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	return &PartyFilter{expr: expr, prog: prog}, nil
}

// FilterTypeError reports an expression that does not evaluate to a bool.
type FilterTypeError struct {
	Expr string
	Type string
}

func (e *FilterTypeError) Error() string {
	return "filter " + e.Expr + " has type " + e.Type + ", want bool"
}

func (f *PartyFilter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against one party of s. Evaluation errors do
// not match.
func (f *PartyFilter) Match(s feed.Search, p feed.Party) bool {
	if f == nil {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"map_id":      int64(s.MapID),
		"district":    int64(s.District),
		"sender":      p.Sender,
		"message":     p.Message,
		"search_type": int64(p.SearchType),
		"level":       int64(p.Level),
		"primary":     int64(p.Primary),
		"secondary":   int64(p.Secondary),
		"party_size":  int64(p.PartySize),
		"hero_count":  int64(p.HeroCount),
		"hardmode":    int64(p.HardMode),
		"party_id":    int64(p.PartyID),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
