/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package limits

import (
	"fmt"

	"github.com/parsefence/go-parsefence/config"
)

const cfgDefaultKeyPrefix = "limits"

const (
	cfgKeySecureProcessing   = "secureProcessing"
	cfgKeyReportEntityCounts = "reportEntityCounts"
	cfgKeyOverrides          = "overrides"
)

// Config represents a set of configuration parameters for the limit registry.
// Configuration can be loaded in different formats (YAML, JSON) using config.Loader, viper,
// or with json.Unmarshal/yaml.Unmarshal functions directly.
type Config struct {
	// SecureProcessing toggles secure-processing mode, which swaps all limits
	// to their restrictive values in one step.
	SecureProcessing bool `mapstructure:"secureProcessing" yaml:"secureProcessing" json:"secureProcessing"`

	// ReportEntityCounts turns on entity-count diagnostics.
	ReportEntityCounts bool `mapstructure:"reportEntityCounts" yaml:"reportEntityCounts" json:"reportEntityCounts"`

	// Overrides holds limit values keyed by property name. The canonical key,
	// the API property name, and the system property name are all accepted,
	// case-insensitively (viper lowercases configuration keys).
	Overrides map[string]int `mapstructure:"overrides" yaml:"overrides" json:"overrides"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// ConfigOption is a type for functional options for the Config.
type ConfigOption func(*configOptions)

type configOptions struct {
	keyPrefix string
}

// WithKeyPrefix returns a ConfigOption that sets a key prefix for parsing configuration parameters.
// This prefix will be used by config.Loader.
func WithKeyPrefix(keyPrefix string) ConfigOption {
	return func(o *configOptions) {
		o.keyPrefix = keyPrefix
	}
}

// NewConfig creates a new instance of the Config.
func NewConfig(options ...ConfigOption) *Config {
	var opts = configOptions{keyPrefix: cfgDefaultKeyPrefix}
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{keyPrefix: opts.keyPrefix}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
// Implements config.KeyPrefixProvider interface.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for the limit registry in config.DataProvider.
// Implements config.Config interface.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeySecureProcessing, false)
	dp.SetDefault(cfgKeyReportEntityCounts, false)
}

// Set sets limit registry configuration values from config.DataProvider.
// Implements config.Config interface.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.SecureProcessing, err = dp.GetBool(cfgKeySecureProcessing); err != nil {
		return err
	}
	if c.ReportEntityCounts, err = dp.GetBool(cfgKeyReportEntityCounts); err != nil {
		return err
	}
	if err = dp.UnmarshalKey(cfgKeyOverrides, &c.Overrides); err != nil {
		return err
	}
	for name, value := range c.Overrides {
		if value < 0 {
			return dp.WrapKeyErr(cfgKeyOverrides, fmt.Errorf("negative value %d for %q", value, name))
		}
	}
	return nil
}

// Apply applies the configuration to the registry: it toggles secure
// processing and then writes every override at ProvenanceConfigFile. An
// override naming a property the registry does not manage is an error; a
// configuration typo must not be silently ignored.
func (c *Config) Apply(reg *Registry) error {
	reg.SetSecureProcessing(c.SecureProcessing)
	for name, value := range c.Overrides {
		limit, ok := reg.indexFold(name)
		if !ok {
			return fmt.Errorf("unknown limit property %q", name)
		}
		reg.Set(limit, ProvenanceConfigFile, value)
	}
	if c.ReportEntityCounts {
		reg.SetIntByName(PropertyEntityCountInfo, ProvenanceConfigFile, 1)
	}
	return nil
}
