/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package config

import (
	"io"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// SettingOrigin tells where a bootstrapped setting value came from.
type SettingOrigin int

// Supported setting origins. Environment variables take priority over values
// read from a settings file.
const (
	SettingOriginEnvironment SettingOrigin = iota
	SettingOriginFile
)

// String returns the human-readable representation of the origin.
// Implements fmt.Stringer interface.
func (o SettingOrigin) String() string {
	switch o {
	case SettingOriginEnvironment:
		return "environment"
	case SettingOriginFile:
		return "settings file"
	}
	return "unknown"
}

// SettingsSource supplies raw values of process-wide settings together with
// the origin of each value. It is queried by limits.NewRegistry once per limit
// kind during bootstrap.
type SettingsSource interface {
	// LookupSetting returns the raw string value stored under the given key.
	// An empty string is treated as an absent value.
	LookupSetting(key string) (value string, origin SettingOrigin, found bool)
}

// ViperSettingsSource is a SettingsSource implementation that reads settings
// from process environment variables and, optionally, from a settings file.
// A value found in the environment wins over the one from the file.
type ViperSettingsSource struct {
	env  *viper.Viper
	file *viper.Viper
}

var _ SettingsSource = (*ViperSettingsSource)(nil)

// NewEnvSettingsSource creates a ViperSettingsSource that reads settings from
// environment variables only. Dots in setting keys are replaced with
// underscores, e.g. with the "parsefence" prefix the "limits.maxNameLimit" key
// is looked up as the PARSEFENCE_LIMITS_MAXNAMELIMIT variable.
func NewEnvSettingsSource(envVarsPrefix string) *ViperSettingsSource {
	env := viper.New()
	env.AutomaticEnv()
	env.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	env.SetEnvPrefix(envVarsPrefix)
	return &ViperSettingsSource{env: env}
}

// NewSettingsSource creates a ViperSettingsSource that reads settings from
// environment variables and from the given settings file.
func NewSettingsSource(envVarsPrefix string, filePath string, dataType DataType) (*ViperSettingsSource, error) {
	src := NewEnvSettingsSource(envVarsPrefix)
	file := viper.New()
	file.SetConfigType(string(dataType))
	file.SetConfigFile(filePath)
	if err := file.ReadInConfig(); err != nil {
		return nil, err
	}
	src.file = file
	return src, nil
}

// NewSettingsSourceFromReader creates a ViperSettingsSource that reads
// settings from environment variables and from the given reader.
func NewSettingsSourceFromReader(envVarsPrefix string, reader io.Reader, dataType DataType) (*ViperSettingsSource, error) {
	src := NewEnvSettingsSource(envVarsPrefix)
	file := viper.New()
	file.SetConfigType(string(dataType))
	if err := file.ReadConfig(reader); err != nil {
		return nil, err
	}
	src.file = file
	return src, nil
}

// LookupSetting returns the raw string value stored under the given key,
// checking environment variables first and the settings file second.
func (s *ViperSettingsSource) LookupSetting(key string) (string, SettingOrigin, bool) {
	if val := s.env.Get(key); val != nil {
		if str := cast.ToString(val); str != "" {
			return str, SettingOriginEnvironment, true
		}
	}
	if s.file != nil {
		if val := s.file.Get(key); val != nil {
			if str := cast.ToString(val); str != "" {
				return str, SettingOriginFile, true
			}
		}
	}
	return "", 0, false
}
