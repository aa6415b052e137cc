/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package limits

// Provenance identifies the origin of a limit value. The order of the constants
// reflects the overriding order: a write is applied only if its provenance is
// greater than or equal to the provenance of the value it replaces.
type Provenance int

// Provenances, from lowest to highest precedence.
const (
	ProvenanceDefault Provenance = iota
	ProvenanceSecureProcessing
	ProvenanceConfigFile
	ProvenanceEnvironment
	ProvenanceAPI
)

// String returns the human-readable representation of the provenance.
// Implements fmt.Stringer interface.
func (p Provenance) String() string {
	switch p {
	case ProvenanceDefault:
		return "default"
	case ProvenanceSecureProcessing:
		return "secure_processing"
	case ProvenanceConfigFile:
		return "settings_file"
	case ProvenanceEnvironment:
		return "environment"
	case ProvenanceAPI:
		return "api"
	}
	return "unknown"
}
