package app

import (
	"fmt"
	"sort"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

type invariantRoute struct {
	module string
	route  string
	check  sdk.Invariant
}

// InvariantRegistry collects module invariants. It implements sdk.InvariantRegistry.
type InvariantRegistry struct {
	routes []invariantRoute
}

var _ sdk.InvariantRegistry = (*InvariantRegistry)(nil)

func NewInvariantRegistry() *InvariantRegistry {
	return &InvariantRegistry{}
}

// RegisterRoute adds an invariant. Registering the same route twice panics.
func (r *InvariantRegistry) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	for _, existing := range r.routes {
		if existing.module == moduleName && existing.route == route {
			panic(fmt.Sprintf("invariant %s/%s already registered", moduleName, route))
		}
	}
	r.routes = append(r.routes, invariantRoute{module: moduleName, route: route, check: invar})
}

// Routes returns the registered routes as module/route, sorted.
func (r *InvariantRegistry) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for _, ir := range r.routes {
		out = append(out, ir.module+"/"+ir.route)
	}
	sort.Strings(out)
	return out
}

// AssertAll runs every invariant and returns the first broken one.
func (r *InvariantRegistry) AssertAll(ctx sdk.Context) error {
	for _, ir := range r.routes {
		if msg, broken := ir.check(ctx); broken {
			return fmt.Errorf("invariant %s/%s broken: %s", ir.module, ir.route, msg)
		}
	}
	return nil
}
