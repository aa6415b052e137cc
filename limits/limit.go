/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package limits

// Limit identifies one of the limits managed by Registry.
// It is an index into the limit table the registry was constructed with.
type Limit int

// Limits of the default table (see DefaultLimits).
const (
	// EntityExpansionLimit restricts the number of entity expansions per document.
	EntityExpansionLimit Limit = iota
	// MaxOccurLimit restricts the number of content model nodes that may be created
	// when building a grammar for a schema that contains maxOccurs attributes.
	MaxOccurLimit
	// ElementAttributeLimit restricts the number of attributes an element may have.
	ElementAttributeLimit
	// TotalEntitySizeLimit restricts the cumulative size of all entities in a document.
	TotalEntitySizeLimit
	// GeneralEntitySizeLimit restricts the maximum size of any general entity.
	GeneralEntitySizeLimit
	// ParameterEntitySizeLimit restricts the maximum size of any parameter entity,
	// including the result of nesting multiple parameter entities.
	ParameterEntitySizeLimit
	// MaxElementDepthLimit restricts the maximum element depth of a document.
	MaxElementDepthLimit
	// MaxNameLimit restricts the maximum size of element, attribute, and entity names.
	MaxNameLimit
	// EntityReplacementLimit restricts the total number of nodes in all entity
	// reference expansions.
	EntityReplacementLimit
)

// PropertyEntityCountInfo is the property name under which callers may turn on
// entity-count diagnostics. It is resolved through the same name-lookup path as
// the managed limits but stores a free-form string flag instead of a bounded
// integer and is exempt from the precedence rules.
const PropertyEntityCountInfo = "parsefence.xml.getEntityCountInfo"

// reportEnabledValue is the flag value under which entity-count reporting is on.
const reportEnabledValue = "yes"

// LimitSpec carries the immutable metadata of a single limit kind.
type LimitSpec struct {
	// Key is the canonical name of the limit.
	Key string

	// APIProperty is the property name used by callers of the processing library.
	APIProperty string

	// SystemProperty is the setting key under which the limit may be configured
	// via environment variables or a settings file.
	SystemProperty string

	// LegacySystemProperties are old-form setting keys kept for backward
	// compatibility. They are consulted during bootstrap only, as a fallback
	// when SystemProperty yields no configured value; name resolution of
	// setter calls never matches them.
	LegacySystemProperties []string

	// DefaultValue is the permissive value used when secure processing is off.
	// Zero means no limit.
	DefaultValue int

	// SecureValue is the restrictive value applied when secure processing is on.
	SecureValue int
}

var defaultLimits = []LimitSpec{
	{
		Key:                    "EntityExpansionLimit",
		APIProperty:            "parsefence.xml.entityExpansionLimit",
		SystemProperty:         "limits.entityExpansionLimit",
		LegacySystemProperties: []string{"entityExpansionLimit"},
		DefaultValue:           0,
		SecureValue:            64000,
	},
	{
		Key:                    "MaxOccurLimit",
		APIProperty:            "parsefence.xml.maxOccurLimit",
		SystemProperty:         "limits.maxOccurLimit",
		LegacySystemProperties: []string{"maxOccurLimit"},
		DefaultValue:           0,
		SecureValue:            5000,
	},
	{
		Key:                    "ElementAttributeLimit",
		APIProperty:            "parsefence.xml.elementAttributeLimit",
		SystemProperty:         "limits.elementAttributeLimit",
		LegacySystemProperties: []string{"elementAttributeLimit"},
		DefaultValue:           0,
		SecureValue:            10000,
	},
	{
		Key:            "TotalEntitySizeLimit",
		APIProperty:    "parsefence.xml.totalEntitySizeLimit",
		SystemProperty: "limits.totalEntitySizeLimit",
		DefaultValue:   0,
		SecureValue:    50000000,
	},
	{
		Key:            "MaxGeneralEntitySizeLimit",
		APIProperty:    "parsefence.xml.maxGeneralEntitySizeLimit",
		SystemProperty: "limits.maxGeneralEntitySizeLimit",
		DefaultValue:   0,
		SecureValue:    0,
	},
	{
		Key:            "MaxParameterEntitySizeLimit",
		APIProperty:    "parsefence.xml.maxParameterEntitySizeLimit",
		SystemProperty: "limits.maxParameterEntitySizeLimit",
		DefaultValue:   0,
		SecureValue:    1000000,
	},
	{
		Key:            "MaxElementDepthLimit",
		APIProperty:    "parsefence.xml.maxElementDepth",
		SystemProperty: "limits.maxElementDepth",
		DefaultValue:   0,
		SecureValue:    0,
	},
	{
		Key:            "MaxXMLNameLimit",
		APIProperty:    "parsefence.xml.maxXMLNameLimit",
		SystemProperty: "limits.maxXMLNameLimit",
		DefaultValue:   1000,
		SecureValue:    1000,
	},
	{
		Key:            "EntityReplacementLimit",
		APIProperty:    "parsefence.xml.entityReplacementLimit",
		SystemProperty: "limits.entityReplacementLimit",
		DefaultValue:   0,
		SecureValue:    3000000,
	},
}

// DefaultLimits returns a copy of the default limit table.
// The Limit constants of this package are indexes into it.
func DefaultLimits() []LimitSpec {
	table := make([]LimitSpec, len(defaultLimits))
	copy(table, defaultLimits)
	return table
}
