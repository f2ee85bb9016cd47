// Package pagination holds per-section page state for detail views.
//
// This package contains:
//   - State: the current page, page size, and server-reported totals
//   - Patch: a partial update to page/size
//   - Controller: merges patches and decides when a refetch is due
//   - Meta: response metadata applied after a successful fetch
//
// A Controller's Update is the only path that produces a fetch Request; applying
// server metadata with Settle never does.
package pagination
