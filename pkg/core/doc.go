// Package core defines the shared language of the Horizon viewer.
//
// This package contains:
//   - Table entities (Grid, Row, SortKey)
//   - View enumerations (Direction, Theme)
//   - Canonical telemetry column names and their aliases
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
