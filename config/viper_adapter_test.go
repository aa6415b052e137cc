/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAdapterYAML = `
str: "some string"
int: 42
negative: -5
bool: true
format: json
size: "50M"
overrides:
  entityExpansionLimit: 1000
`

func newTestViperAdapter(t *testing.T) *ViperAdapter {
	t.Helper()
	va := NewViperAdapter()
	require.NoError(t, va.SetFromReader(bytes.NewReader([]byte(testAdapterYAML)), DataTypeYAML))
	return va
}

func TestViperAdapterGetters(t *testing.T) {
	va := newTestViperAdapter(t)

	gotStr, err := va.GetString("str")
	require.NoError(t, err)
	require.Equal(t, "some string", gotStr)

	gotInt, err := va.GetInt("int")
	require.NoError(t, err)
	require.Equal(t, 42, gotInt)

	gotBool, err := va.GetBool("bool")
	require.NoError(t, err)
	require.True(t, gotBool)

	_, err = va.GetInt("str")
	require.Error(t, err)
	require.Contains(t, err.Error(), "str:")
}

func TestViperAdapterGetStringFromSet(t *testing.T) {
	va := newTestViperAdapter(t)

	got, err := va.GetStringFromSet("format", []string{"json", "text"}, false)
	require.NoError(t, err)
	require.Equal(t, "json", got)

	_, err = va.GetStringFromSet("format", []string{"yaml", "toml"}, false)
	require.Error(t, err)

	got, err = va.GetStringFromSet("format", []string{"JSON"}, true)
	require.NoError(t, err)
	require.Equal(t, "json", got)
}

func TestViperAdapterGetBytesCount(t *testing.T) {
	va := newTestViperAdapter(t)

	got, err := va.GetBytesCount("size")
	require.NoError(t, err)
	require.Equal(t, BytesCount(50*1024*1024), got)

	got, err = va.GetBytesCount("int")
	require.NoError(t, err)
	require.Equal(t, BytesCount(42), got)

	_, err = va.GetBytesCount("negative")
	require.Error(t, err)

	_, err = va.GetBytesCount("str")
	require.Error(t, err)
}

func TestViperAdapterUnmarshalKey(t *testing.T) {
	va := newTestViperAdapter(t)

	var overrides map[string]int
	require.NoError(t, va.UnmarshalKey("overrides", &overrides))
	require.Equal(t, map[string]int{"entityexpansionlimit": 1000}, overrides)
}

func TestViperAdapterEnvVars(t *testing.T) {
	t.Setenv("PARSEFENCE_LIMITS_MAXOCCURLIMIT", "5000")

	va := NewViperAdapter()
	va.UseEnvVars("parsefence")

	got, err := va.GetInt("limits.maxOccurLimit")
	require.NoError(t, err)
	require.Equal(t, 5000, got)
}
