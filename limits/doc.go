/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

// Package limits manages the numeric security limits that guard document parsers
// against resource-exhaustion attacks (entity expansion bombs, oversized entities,
// deeply nested elements). Every limit can be set from several origins (API calls,
// environment variables, settings files, the secure-processing switch), and the
// Registry arbitrates conflicting writes so that a lower-priority origin never
// silently overrides a higher-priority one.
package limits
