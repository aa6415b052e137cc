/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBytesCountUnmarshal(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		var cfg struct {
			Size BytesCount `yaml:"size"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(`size: "1M"`), &cfg))
		require.Equal(t, BytesCount(1024*1024), cfg.Size)

		require.NoError(t, yaml.Unmarshal([]byte(`size: 1024`), &cfg))
		require.Equal(t, BytesCount(1024), cfg.Size)

		require.Error(t, yaml.Unmarshal([]byte(`size: "1X"`), &cfg))
	})

	t.Run("json", func(t *testing.T) {
		var cfg struct {
			Size BytesCount `json:"size"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"size": "1M"}`), &cfg))
		require.Equal(t, BytesCount(1024*1024), cfg.Size)

		require.NoError(t, json.Unmarshal([]byte(`{"size": 1024}`), &cfg))
		require.Equal(t, BytesCount(1024), cfg.Size)

		require.Error(t, json.Unmarshal([]byte(`{"size": -1}`), &cfg))
	})

	t.Run("k8s power-of-two suffix", func(t *testing.T) {
		var size BytesCount
		require.NoError(t, size.UnmarshalText([]byte("1Mi")))
		require.Equal(t, BytesCount(1024*1024), size)
	})
}

func TestBytesCountMarshal(t *testing.T) {
	require.Equal(t, "1M", BytesCount(1024*1024).String())

	data, err := json.Marshal(BytesCount(1024))
	require.NoError(t, err)
	require.Equal(t, `"1K"`, string(data))
}
