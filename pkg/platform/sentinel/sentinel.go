package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and platform adapters return
// these (optionally wrapped) so services can translate them into domain behavior.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: key or record does not exist in the store
// - ErrInvalidState: component in wrong state for the requested operation
// - ErrUnavailable: external capability (geocoder, broker, device link) unreachable
// - ErrNoResult: a lookup completed but produced nothing usable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrNoResult     = errors.New("no result")
)
