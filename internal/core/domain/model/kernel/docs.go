// Package kernel holds the value objects shared by every aggregate of the tracking domain:
// UUID identifiers, WGS84 coordinates with great-circle distance, and addresses.
//
// All values are immutable and their zero values fail validation; use the constructors.
package kernel
