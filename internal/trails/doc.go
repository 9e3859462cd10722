// Package trails owns the blob-trail tracking core.
//
// Responsibilities: greedy nearest-neighbour association of per-frame
// blob centroids to live trails, trail birth inside entry gutters and
// trail retirement inside exit gutters.
// Key types: Position, Trail, Window, RegionSet, Tracker.
//
// Dependency rule: this package performs no I/O. Frame sources live in
// internal/centroids and trail sinks in internal/trailio.
package trails
