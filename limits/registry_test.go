/*
Copyright © 2026 Parsefence Authors.

Released under MIT license.
*/

package limits

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parsefence/go-parsefence/config"
)

type fakeSettingsSource struct {
	env  map[string]string
	file map[string]string
}

func (s fakeSettingsSource) LookupSetting(key string) (string, config.SettingOrigin, bool) {
	if v, ok := s.env[key]; ok {
		return v, config.SettingOriginEnvironment, true
	}
	if v, ok := s.file[key]; ok {
		return v, config.SettingOriginFile, true
	}
	return "", 0, false
}

func newTestRegistry(t *testing.T, options ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(append([]Option{WithSettingsSource(nil)}, options...)...)
	require.NoError(t, err)
	return r
}

func TestNewRegistry(t *testing.T) {
	t.Run("secure processing disabled", func(t *testing.T) {
		r := newTestRegistry(t)
		for i := range DefaultLimits() {
			limit := Limit(i)
			require.Equal(t, r.Spec(limit).DefaultValue, r.Value(limit))
			require.Equal(t, ProvenanceDefault, r.State(limit))
			require.False(t, r.IsExplicitlySet(limit))
		}
	})

	t.Run("secure processing enabled", func(t *testing.T) {
		r := newTestRegistry(t, WithSecureProcessing(true))
		for i := range DefaultLimits() {
			limit := Limit(i)
			require.Equal(t, r.Spec(limit).SecureValue, r.Value(limit))
			require.Equal(t, ProvenanceSecureProcessing, r.State(limit))
			require.False(t, r.IsExplicitlySet(limit))
		}
	})
}

func TestRegistrySetPrecedence(t *testing.T) {
	t.Run("increasing provenance always applies", func(t *testing.T) {
		r := newTestRegistry(t)
		seq := []struct {
			p Provenance
			v int
		}{
			{ProvenanceDefault, 10},
			{ProvenanceSecureProcessing, 20},
			{ProvenanceConfigFile, 30},
			{ProvenanceEnvironment, 40},
			{ProvenanceAPI, 50},
		}
		for _, s := range seq {
			r.Set(MaxOccurLimit, s.p, s.v)
			require.Equal(t, s.v, r.Value(MaxOccurLimit))
			require.Equal(t, s.p, r.State(MaxOccurLimit))
			require.True(t, r.IsExplicitlySet(MaxOccurLimit))
		}
	})

	t.Run("lower provenance is rejected", func(t *testing.T) {
		r := newTestRegistry(t)
		r.Set(EntityExpansionLimit, ProvenanceEnvironment, 12345)
		r.Set(EntityExpansionLimit, ProvenanceConfigFile, 1)
		require.Equal(t, 12345, r.Value(EntityExpansionLimit))
		require.Equal(t, ProvenanceEnvironment, r.State(EntityExpansionLimit))
	})

	t.Run("equal provenance overwrites", func(t *testing.T) {
		r := newTestRegistry(t)
		r.Set(MaxElementDepthLimit, ProvenanceConfigFile, 100)
		r.Set(MaxElementDepthLimit, ProvenanceConfigFile, 200)
		require.Equal(t, 200, r.Value(MaxElementDepthLimit))
	})

	t.Run("negative value is clamped to zero", func(t *testing.T) {
		r := newTestRegistry(t)
		r.Set(MaxNameLimit, ProvenanceAPI, -42)
		require.Equal(t, 0, r.Value(MaxNameLimit))
		require.True(t, r.IsExplicitlySet(MaxNameLimit))
	})
}

func TestRegistrySetSecureProcessing(t *testing.T) {
	r := newTestRegistry(t)

	r.SetSecureProcessing(true)
	require.Equal(t, 64000, r.Value(EntityExpansionLimit))
	require.Equal(t, ProvenanceSecureProcessing, r.State(EntityExpansionLimit))

	// toggling back applies the defaults since the provenance is equal
	r.SetSecureProcessing(false)
	require.Equal(t, 0, r.Value(EntityExpansionLimit))
	require.Equal(t, ProvenanceSecureProcessing, r.State(EntityExpansionLimit))

	// a limit pinned from a higher-priority origin survives the toggle
	r.Set(MaxOccurLimit, ProvenanceAPI, 777)
	r.SetSecureProcessing(true)
	require.Equal(t, 777, r.Value(MaxOccurLimit))
	require.Equal(t, ProvenanceAPI, r.State(MaxOccurLimit))
}

func TestRegistrySetValueByName(t *testing.T) {
	t.Run("api and system property names address the same limit", func(t *testing.T) {
		r := newTestRegistry(t)

		found, err := r.SetValueByName("parsefence.xml.entityExpansionLimit", ProvenanceConfigFile, "100")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, 100, r.Value(EntityExpansionLimit))

		found, err = r.SetValueByName("limits.entityExpansionLimit", ProvenanceConfigFile, "200")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, 200, r.Value(EntityExpansionLimit))
	})

	t.Run("unknown name is not an error", func(t *testing.T) {
		r := newTestRegistry(t)
		found, err := r.SetValueByName("unrelated.property", ProvenanceAPI, "100")
		require.NoError(t, err)
		require.False(t, found)
		for i := range DefaultLimits() {
			require.False(t, r.IsExplicitlySet(Limit(i)))
		}
	})

	t.Run("name matching is case-sensitive", func(t *testing.T) {
		r := newTestRegistry(t)
		found, err := r.SetValueByName("LIMITS.ENTITYEXPANSIONLIMIT", ProvenanceAPI, "100")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("negative string value is clamped to zero", func(t *testing.T) {
		r := newTestRegistry(t)
		found, err := r.SetValueByName("limits.maxOccurLimit", ProvenanceAPI, "-5")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, 0, r.Value(MaxOccurLimit))
		require.True(t, r.IsExplicitlySet(MaxOccurLimit))
	})

	t.Run("malformed value fails and leaves the limit untouched", func(t *testing.T) {
		r := newTestRegistry(t)
		r.Set(MaxOccurLimit, ProvenanceConfigFile, 42)

		found, err := r.SetValueByName("limits.maxOccurLimit", ProvenanceAPI, "abc")
		require.Error(t, err)
		require.True(t, found)
		require.Equal(t, 42, r.Value(MaxOccurLimit))
		require.Equal(t, ProvenanceConfigFile, r.State(MaxOccurLimit))
	})
}

// The scenario from the package documentation: an environment value sticks
// against a later settings-file write but yields to an API write.
func TestRegistryOverrideScenario(t *testing.T) {
	r := newTestRegistry(t)

	found, err := r.SetValueByName("limits.entityExpansionLimit", ProvenanceEnvironment, "12345")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 12345, r.Value(EntityExpansionLimit))
	require.Equal(t, ProvenanceEnvironment, r.State(EntityExpansionLimit))

	found, err = r.SetValueByName("limits.entityExpansionLimit", ProvenanceConfigFile, "1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 12345, r.Value(EntityExpansionLimit))
	require.Equal(t, ProvenanceEnvironment, r.State(EntityExpansionLimit))

	found, err = r.SetValueByName("limits.entityExpansionLimit", ProvenanceAPI, "1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, r.Value(EntityExpansionLimit))
	require.Equal(t, ProvenanceAPI, r.State(EntityExpansionLimit))
}

func TestRegistryBootstrap(t *testing.T) {
	t.Run("environment value", func(t *testing.T) {
		src := fakeSettingsSource{env: map[string]string{"limits.entityExpansionLimit": "4242"}}
		r, err := NewRegistry(WithSettingsSource(src))
		require.NoError(t, err)
		require.Equal(t, 4242, r.Value(EntityExpansionLimit))
		require.Equal(t, ProvenanceEnvironment, r.State(EntityExpansionLimit))
		require.False(t, r.IsExplicitlySet(EntityExpansionLimit))
	})

	t.Run("settings file value", func(t *testing.T) {
		src := fakeSettingsSource{file: map[string]string{"limits.maxElementDepth": "128"}}
		r, err := NewRegistry(WithSettingsSource(src))
		require.NoError(t, err)
		require.Equal(t, 128, r.Value(MaxElementDepthLimit))
		require.Equal(t, ProvenanceConfigFile, r.State(MaxElementDepthLimit))
	})

	t.Run("legacy name is a fallback only", func(t *testing.T) {
		src := fakeSettingsSource{env: map[string]string{"entityExpansionLimit": "777"}}
		r, err := NewRegistry(WithSettingsSource(src))
		require.NoError(t, err)
		require.Equal(t, 777, r.Value(EntityExpansionLimit))

		src = fakeSettingsSource{env: map[string]string{
			"limits.entityExpansionLimit": "100",
			"entityExpansionLimit":        "777",
		}}
		r, err = NewRegistry(WithSettingsSource(src))
		require.NoError(t, err)
		require.Equal(t, 100, r.Value(EntityExpansionLimit))
	})

	t.Run("bootstrapped value beats secure processing seed", func(t *testing.T) {
		src := fakeSettingsSource{env: map[string]string{"limits.entityExpansionLimit": "4242"}}
		r, err := NewRegistry(WithSecureProcessing(true), WithSettingsSource(src))
		require.NoError(t, err)
		require.Equal(t, 4242, r.Value(EntityExpansionLimit))

		// re-enabling secure processing must not override the environment value
		r.SetSecureProcessing(true)
		require.Equal(t, 4242, r.Value(EntityExpansionLimit))
	})

	t.Run("malformed value aborts construction", func(t *testing.T) {
		src := fakeSettingsSource{env: map[string]string{"limits.entityExpansionLimit": "not-a-number"}}
		_, err := NewRegistry(WithSettingsSource(src))
		require.Error(t, err)
		require.Contains(t, err.Error(), "limits.entityExpansionLimit")
	})
}

func TestRegistryEntityCountReport(t *testing.T) {
	t.Run("string entry point stores the literal", func(t *testing.T) {
		r := newTestRegistry(t)
		require.False(t, r.ReportsEntityCounts())

		found, err := r.SetValueByName(PropertyEntityCountInfo, ProvenanceAPI, "no")
		require.NoError(t, err)
		require.True(t, found)
		require.False(t, r.ReportsEntityCounts())

		val, ok := r.LookupValueByName(PropertyEntityCountInfo)
		require.True(t, ok)
		require.Equal(t, "no", val)

		found, err = r.SetValueByName(PropertyEntityCountInfo, ProvenanceAPI, "yes")
		require.NoError(t, err)
		require.True(t, found)
		require.True(t, r.ReportsEntityCounts())
	})

	t.Run("typed entry point always turns reporting on", func(t *testing.T) {
		r := newTestRegistry(t)
		require.True(t, r.SetIntByName(PropertyEntityCountInfo, ProvenanceDefault, 0))
		require.True(t, r.ReportsEntityCounts())
	})

	t.Run("any write wins regardless of provenance", func(t *testing.T) {
		r := newTestRegistry(t)
		require.True(t, r.SetIntByName(PropertyEntityCountInfo, ProvenanceAPI, 1))
		found, err := r.SetValueByName(PropertyEntityCountInfo, ProvenanceDefault, "no")
		require.NoError(t, err)
		require.True(t, found)
		require.False(t, r.ReportsEntityCounts())
	})
}

func TestRegistryLookupValueByName(t *testing.T) {
	r := newTestRegistry(t)
	r.Set(MaxNameLimit, ProvenanceAPI, 2000)

	val, ok := r.LookupValueByName("parsefence.xml.maxXMLNameLimit")
	require.True(t, ok)
	require.Equal(t, "2000", val)

	_, ok = r.LookupValueByName("unrelated.property")
	require.False(t, ok)
}

func TestRegistryCustomLimitTable(t *testing.T) {
	table := []LimitSpec{
		{
			Key:            "FrameDepthLimit",
			APIProperty:    "test.frameDepthLimit",
			SystemProperty: "limits.frameDepthLimit",
			DefaultValue:   7,
			SecureValue:    3,
		},
	}
	r, err := NewRegistry(WithLimitTable(table), WithSettingsSource(nil))
	require.NoError(t, err)

	const frameDepthLimit Limit = 0
	require.Equal(t, 7, r.Value(frameDepthLimit))

	found, err := r.SetValueByName("test.frameDepthLimit", ProvenanceAPI, "5")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 5, r.Value(frameDepthLimit))

	found, err = r.SetValueByName("parsefence.xml.entityExpansionLimit", ProvenanceAPI, "5")
	require.NoError(t, err)
	require.False(t, found)
}

type countingMetrics struct {
	applied  int
	rejected int
	unknown  int
	warnings int
}

func (m *countingMetrics) IncWriteApplied(Provenance)  { m.applied++ }
func (m *countingMetrics) IncWriteRejected(Provenance) { m.rejected++ }
func (m *countingMetrics) IncUnknownProperty()         { m.unknown++ }
func (m *countingMetrics) IncWarningEmitted()          { m.warnings++ }

func TestRegistryMetrics(t *testing.T) {
	mc := &countingMetrics{}
	r := newTestRegistry(t, WithMetrics(mc))

	r.Set(EntityExpansionLimit, ProvenanceEnvironment, 100)
	r.Set(EntityExpansionLimit, ProvenanceConfigFile, 1)
	r.SetIntByName("unrelated.property", ProvenanceAPI, 1)

	require.Equal(t, 1, mc.applied)
	require.Equal(t, 1, mc.rejected)
	require.Equal(t, 1, mc.unknown)
}
