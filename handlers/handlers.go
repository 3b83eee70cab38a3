package handlers

import (
	"github.com/auto-strada/site/valuation"
	"github.com/auto-strada/site/vincache"
)

var (
	resolver *valuation.Resolver
	store    *vincache.Store
)

// Init wires the handler package's collaborators. Called once from main
// before the server starts.
func Init(r *valuation.Resolver, s *vincache.Store) {
	resolver = r
	store = s
}
