// Package services provides domain services that do not belong to a single
// aggregate root.
//
// The package includes:
//   - ETAPredictor: asks the external oracle for an arrival estimate under a
//     deadline and degrades to the deterministic fallback formula when the
//     oracle is slow, down or answers garbage
package services
