/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package limits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/xid"

	"github.com/parsefence/go-parsefence/config"
	"github.com/parsefence/go-parsefence/log"
)

// DefaultEnvVarsPrefix is the prefix of the environment variables that the
// registry bootstrap reads limit values from when no custom settings source
// is provided. E.g. the "limits.entityExpansionLimit" setting is looked up as
// the PARSEFENCE_LIMITS_ENTITYEXPANSIONLIMIT variable.
const DefaultEnvVarsPrefix = "parsefence"

// Registry holds the current value, provenance, and explicitly-set flag for a
// fixed set of limits, one document-processing session each. All reads and
// writes of the limits go through it.
//
// Registry is not safe for concurrent mutation; callers must not share one
// instance across concurrently running parses unless they serialize all
// setter calls.
type Registry struct {
	table  []LimitSpec
	values []int
	states []Provenance
	isSet  []bool

	// reportEntityCounts is a free-form string flag addressed through the same
	// name-lookup path as the limits but exempt from the precedence rules.
	reportEntityCounts string

	id      string
	logger  log.FieldLogger
	metrics MetricsCollector
}

// Option configures the Registry being constructed.
type Option func(*registryOptions)

type registryOptions struct {
	secureProcessing bool
	table            []LimitSpec
	logger           log.FieldLogger
	metrics          MetricsCollector
	source           config.SettingsSource
	sourceSet        bool
}

// WithSecureProcessing returns an Option that enables or disables secure
// processing at construction time. When enabled, every limit is seeded with
// its restrictive secure value instead of the permissive default.
func WithSecureProcessing(enabled bool) Option {
	return func(o *registryOptions) {
		o.secureProcessing = enabled
	}
}

// WithLimitTable returns an Option that substitutes the limit table the
// registry manages. Useful in tests which need alternate kinds or values.
func WithLimitTable(table []LimitSpec) Option {
	return func(o *registryOptions) {
		o.table = table
	}
}

// WithLogger returns an Option that sets the logger for the registry.
func WithLogger(logger log.FieldLogger) Option {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// WithMetrics returns an Option that sets the metrics collector for the registry.
func WithMetrics(mc MetricsCollector) Option {
	return func(o *registryOptions) {
		o.metrics = mc
	}
}

// WithSettingsSource returns an Option that sets the settings source queried
// during bootstrap. Passing nil disables the bootstrap pass entirely.
func WithSettingsSource(src config.SettingsSource) Option {
	return func(o *registryOptions) {
		o.source = src
		o.sourceSet = true
	}
}

// NewRegistry creates a new Registry.
//
// Every limit is seeded with its default (or secure) value and matching
// provenance and is not considered explicitly set. After seeding, the registry
// performs a bootstrap pass: for each limit it queries the settings source
// under the limit's system-property name (falling back to the legacy names, if
// any) and installs the found value with ProvenanceEnvironment or
// ProvenanceConfigFile depending on the reported origin. A found value that
// does not parse as an integer is a construction error.
func NewRegistry(options ...Option) (*Registry, error) {
	opts := registryOptions{
		table:   DefaultLimits(),
		logger:  log.NewDisabledLogger(),
		metrics: disabledMetricsCollector,
	}
	for _, opt := range options {
		opt(&opts)
	}
	if !opts.sourceSet {
		opts.source = config.NewEnvSettingsSource(DefaultEnvVarsPrefix)
	}

	id := xid.New().String()
	r := &Registry{
		table:   opts.table,
		values:  make([]int, len(opts.table)),
		states:  make([]Provenance, len(opts.table)),
		isSet:   make([]bool, len(opts.table)),
		id:      id,
		logger:  opts.logger.With(log.String("limit_registry_id", id)),
		metrics: opts.metrics,
	}
	for i := range r.table {
		if opts.secureProcessing {
			r.values[i] = r.table[i].SecureValue
			r.states[i] = ProvenanceSecureProcessing
		} else {
			r.values[i] = r.table[i].DefaultValue
			r.states[i] = ProvenanceDefault
		}
	}
	if opts.source != nil {
		if err := r.bootstrap(opts.source); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ID returns the unique identifier of the registry. It is included in all log
// entries the registry emits.
func (r *Registry) ID() string {
	return r.id
}

// SetSecureProcessing attempts to rewrite every limit with its secure value
// (or its default value when secure is false) at ProvenanceSecureProcessing.
// Limits already set from a higher-priority origin keep their values.
func (r *Registry) SetSecureProcessing(secure bool) {
	for i := range r.table {
		if secure {
			r.Set(Limit(i), ProvenanceSecureProcessing, r.table[i].SecureValue)
		} else {
			r.Set(Limit(i), ProvenanceSecureProcessing, r.table[i].DefaultValue)
		}
	}
}

// Set writes the value for the given limit, subject to the precedence gate:
// the write is applied only if the provenance is greater than or equal to the
// current provenance of the limit. Equal provenance overwrites, so the last
// writer at the same level wins. A rejected write is not an error; the limit
// is simply left unchanged. Negative values are clamped to zero.
func (r *Registry) Set(limit Limit, p Provenance, value int) {
	if value < 0 {
		value = 0
	}
	if p < r.states[limit] {
		r.metrics.IncWriteRejected(p)
		r.logger.Debug("limit write rejected by precedence",
			log.String("limit", r.table[limit].Key),
			log.String("provenance", p.String()),
			log.String("current_provenance", r.states[limit].String()),
		)
		return
	}
	r.values[limit] = value
	r.states[limit] = p
	r.isSet[limit] = true
	r.metrics.IncWriteApplied(p)
}

// SetValueByName resolves the given property name and writes the value parsed
// from the string. It returns true iff the name is managed by the registry,
// regardless of whether the precedence gate actually changed the value; an
// unrecognized name is not an error. A string that does not parse as a base-10
// integer makes the call fail and leaves the limit untouched; a negative
// number is clamped to zero.
//
// For the entity-count-report pseudo-property the raw string is stored as is,
// and reporting is considered on iff it equals "yes".
func (r *Registry) SetValueByName(name string, p Provenance, value string) (bool, error) {
	if limit, ok := r.Index(name); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return true, fmt.Errorf("invalid value %q for property %s: %w", value, name, err)
		}
		r.Set(limit, p, parsed)
		return true, nil
	}
	if name == PropertyEntityCountInfo {
		r.reportEntityCounts = value
		return true, nil
	}
	r.metrics.IncUnknownProperty()
	return false, nil
}

// SetIntByName is the typed counterpart of SetValueByName for callers that
// already hold an integer value. Unlike the string entry point, writing the
// entity-count-report pseudo-property through it always turns reporting on,
// whatever the supplied value.
func (r *Registry) SetIntByName(name string, p Provenance, value int) bool {
	if limit, ok := r.Index(name); ok {
		r.Set(limit, p, value)
		return true
	}
	if name == PropertyEntityCountInfo {
		r.reportEntityCounts = reportEnabledValue
		return true
	}
	r.metrics.IncUnknownProperty()
	return false
}

// Value returns the current value of the limit. Zero means no limit.
func (r *Registry) Value(limit Limit) int {
	return r.values[limit]
}

// ValueAsString returns the current value of the limit as a decimal string.
func (r *Registry) ValueAsString(limit Limit) string {
	return strconv.Itoa(r.values[limit])
}

// State returns the provenance of the current value of the limit.
func (r *Registry) State(limit Limit) Provenance {
	return r.states[limit]
}

// IsExplicitlySet reports whether the limit has received at least one write
// since construction, as opposed to retaining only its seed or bootstrap value.
func (r *Registry) IsExplicitlySet(limit Limit) bool {
	return r.isSet[limit]
}

// Spec returns the metadata of the limit.
func (r *Registry) Spec(limit Limit) LimitSpec {
	return r.table[limit]
}

// ReportsEntityCounts reports whether entity-count diagnostics are turned on.
func (r *Registry) ReportsEntityCounts() bool {
	return r.reportEntityCounts == reportEnabledValue
}

// Index resolves a property name to the limit managed under it. A name
// matches a limit if it equals the limit's API property name or its system
// property name; matching is exact and case-sensitive.
func (r *Registry) Index(name string) (Limit, bool) {
	for i := range r.table {
		if name == r.table[i].APIProperty || name == r.table[i].SystemProperty {
			return Limit(i), true
		}
	}
	return 0, false
}

// LookupValueByName returns the current value of the property with the given
// name as a string. It returns false if the name is not managed by the
// registry. For a managed limit the returned value is never empty.
func (r *Registry) LookupValueByName(name string) (string, bool) {
	if limit, ok := r.Index(name); ok {
		return r.ValueAsString(limit), true
	}
	if name == PropertyEntityCountInfo {
		return r.reportEntityCounts, true
	}
	return "", false
}

// indexFold resolves a property name ignoring case. The caller-facing Config
// needs it because configuration files are read through viper, which
// lowercases all keys. The canonical key also matches here.
func (r *Registry) indexFold(name string) (Limit, bool) {
	for i := range r.table {
		if strings.EqualFold(name, r.table[i].APIProperty) ||
			strings.EqualFold(name, r.table[i].SystemProperty) ||
			strings.EqualFold(name, r.table[i].Key) {
			return Limit(i), true
		}
	}
	return 0, false
}

func (r *Registry) bootstrap(src config.SettingsSource) error {
	for i := range r.table {
		found, err := r.bootstrapLimit(src, Limit(i), r.table[i].SystemProperty)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		// no value under the canonical name, try the older forms if any
		for _, legacy := range r.table[i].LegacySystemProperties {
			if found, err = r.bootstrapLimit(src, Limit(i), legacy); err != nil {
				return err
			}
			if found {
				break
			}
		}
	}
	return nil
}

// bootstrapLimit installs the bootstrapped value and provenance directly,
// bypassing the precedence gate, and does not mark the limit explicitly set:
// a bootstrapped limit still retains only pre-session configuration.
func (r *Registry) bootstrapLimit(src config.SettingsSource, limit Limit, key string) (bool, error) {
	raw, origin, ok := src.LookupSetting(key)
	if !ok {
		return false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return false, fmt.Errorf("invalid setting %q for %s: %w", raw, key, err)
	}
	if value < 0 {
		value = 0
	}
	p := ProvenanceConfigFile
	if origin == config.SettingOriginEnvironment {
		p = ProvenanceEnvironment
	}
	r.values[limit] = value
	r.states[limit] = p
	r.logger.Debug("limit bootstrapped",
		log.String("limit", r.table[limit].Key),
		log.String("setting", key),
		log.Int("value", value),
		log.String("provenance", p.String()),
	)
	return true, nil
}
