package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
)

// planCache memoizes a rendered ExecutionPlan by a structural hash of the
// request shape, never by bound values, so two requests that only differ in
// predicate literals share one cache entry and still bind their own
// parameters at execution time. Wraps the non-generic hashicorp/golang-lru
// Cache go.mod pins (v0.5.4, predating the v2 generic package).
type planCache struct {
	cache *lru.Cache
}

// NewPlanCache returns a disabled cache when size <= 0, so
// config.PlanCacheSize == 0 (the documented "always translate" mode) needs
// no special-casing at the call site.
func NewPlanCache(size int) (*planCache, error) {
	if size <= 0 {
		return &planCache{}, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &planCache{cache: c}, nil
}

func (p *planCache) enabled() bool { return p.cache != nil }

func (p *planCache) get(key string) (*ndc.ExecutionPlan, bool) {
	if !p.enabled() {
		return nil, false
	}
	v, ok := p.cache.Get(key)
	if !ok {
		return nil, false
	}
	plan, _ := v.(*ndc.ExecutionPlan)
	return plan, plan != nil
}

func (p *planCache) put(key string, plan *ndc.ExecutionPlan) {
	if !p.enabled() {
		return
	}
	p.cache.Add(key, plan)
}

// queryShapeKey hashes everything about a QueryRequest that determines the
// rendered SQL text except bound predicate/variable values: collection,
// requested fields, relationships, order-by, and the predicate's structure
// with every scalar literal stripped out via stripValues. Two requests
// differing only in a predicate's literal value hash identically, which is
// the entire point of a plan cache; two requests comparing different
// columns or operators do not.
func queryShapeKey(request ndc.QueryRequest) (string, error) {
	shape := struct {
		Collection              string
		Fields                  map[string]ndc.Field
		Aggregates              map[string]ndc.Aggregate
		OrderBy                 *ndc.OrderBy
		Predicate               *ndc.Expression
		HasLimit                bool
		HasOffset               bool
		Arguments               map[string]ndc.Argument
		CollectionRelationships map[string]ndc.Relationship
		HasVariables            bool
	}{
		Collection:              request.Collection,
		Fields:                  request.Query.Fields,
		Aggregates:              request.Query.Aggregates,
		OrderBy:                 request.Query.OrderBy,
		Predicate:               stripValues(request.Query.Predicate),
		HasLimit:                request.Query.Limit != nil,
		HasOffset:               request.Query.Offset != nil,
		Arguments:               request.Arguments,
		CollectionRelationships: request.CollectionRelationships,
		HasVariables:            len(request.Variables) > 0,
	}
	return hashShape(shape)
}

// stripValues returns a copy of an expression tree with every scalar
// literal (ComparisonValue.Value) cleared, leaving the columns, operators,
// and tree shape that actually determine the rendered SQL text intact.
func stripValues(e *ndc.Expression) *ndc.Expression {
	if e == nil {
		return nil
	}
	cp := *e
	for i := range cp.Children {
		stripped := stripValues(&cp.Children[i])
		cp.Children[i] = *stripped
	}
	cp.Operand = stripValues(cp.Operand)
	cp.Predicate = stripValues(cp.Predicate)
	if cp.Value != nil && cp.Value.Kind == ndc.ComparisonValueScalar {
		v := *cp.Value
		v.Value = nil
		cp.Value = &v
	}
	return &cp
}

func hashShape(shape interface{}) (string, error) {
	encoded, err := json.Marshal(shape)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}
