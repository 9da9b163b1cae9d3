// Package filter plans droplet queries: one narrowing parameter is pushed to
// the provider and the full set of requested filters is applied client side.
package filter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/yairfalse/machine/pkg/machine"
)

// Spec holds the user-supplied filters. An empty string means no constraint.
type Spec struct {
	Name   string
	Tag    string
	Type   string
	Region string

	// IncludeForeign keeps droplets not created by this tool.
	IncludeForeign bool

	// Unique asks the caller to enforce a uniqueness policy on the result.
	Unique bool
}

// Capabilities describes which narrowing parameters the provider's list
// call accepts. The provider accepts at most one per call.
type Capabilities struct {
	ByName bool
	ByTag  bool
}

// QueryKind identifies the server-side filter of a Query.
type QueryKind int

const (
	QueryAll QueryKind = iota
	QueryByName
	QueryByTag
)

func (k QueryKind) String() string {
	switch k {
	case QueryByName:
		return "name"
	case QueryByTag:
		return "tag"
	default:
		return "all"
	}
}

// Query is the server-side part of a plan.
type Query struct {
	Kind  QueryKind
	Value string
}

// Lister retrieves droplets narrowed by a Query.
type Lister interface {
	List(ctx context.Context, q Query) ([]machine.Record, error)
}

// Plan is a server-side query plus the client-side clauses that, applied to
// the query result, are equivalent to applying every requested filter.
type Plan struct {
	Query   Query
	Clauses []Clause
}

// NewPlan builds the plan for spec given the provider's capabilities.
func NewPlan(spec Spec, caps Capabilities) Plan {
	return Plan{
		Query:   SelectQuery(spec, caps),
		Clauses: Clauses(spec),
	}
}

// SelectQuery picks the single filter to push server-side, in priority
// order name, tag, type. Type is pushed as its type tag. Region is never
// pushed.
func SelectQuery(spec Spec, caps Capabilities) Query {
	switch {
	case spec.Name != "" && caps.ByName:
		return Query{Kind: QueryByName, Value: spec.Name}
	case spec.Tag != "" && caps.ByTag:
		return Query{Kind: QueryByTag, Value: spec.Tag}
	case spec.Type != "" && caps.ByTag:
		return Query{Kind: QueryByTag, Value: machine.TypeTag(spec.Type)}
	default:
		return Query{Kind: QueryAll}
	}
}

// Matches reports whether r satisfies every clause.
func (p Plan) Matches(r machine.Record) bool {
	for _, c := range p.Clauses {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

// Apply returns the records matching every clause, in input order.
func (p Plan) Apply(records []machine.Record) []machine.Record {
	filtered := make([]machine.Record, 0, len(records))
	for _, r := range records {
		if p.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Find lists droplets through l and filters them according to spec.
func Find(ctx context.Context, l Lister, spec Spec, caps Capabilities) ([]machine.Record, error) {
	plan := NewPlan(spec, caps)

	log.Debug().
		Stringer("query", plan.Query.Kind).
		Str("value", plan.Query.Value).
		Int("clauses", len(plan.Clauses)).
		Msg("planned machine query")

	records, err := l.List(ctx, plan.Query)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}

	filtered := plan.Apply(records)
	log.Debug().Int("listed", len(records)).Int("matched", len(filtered)).Msg("filtered machines")
	return filtered, nil
}
