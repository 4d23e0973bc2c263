package protomail

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupScenario(t *testing.T) {
	s, err := LookupScenario("pgpmime-signed")
	require.NoError(t, err)
	assert.True(t, s.Sign)
	assert.False(t, s.Encrypt)

	_, err = LookupScenario("no-such-scenario")
	assert.ErrorIs(t, err, ErrUnknownScenario)

	_, err = LookupScenario("")
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestScenarioTableInvariants(t *testing.T) {
	names := map[string]bool{}
	offsets := map[int]bool{}

	for _, s := range scenarios {
		assert.False(t, names[s.Name], "scenario names must be unique: %s", s.Name)
		names[s.Name] = true

		require.NoError(t, s.check(), s.Name)
		assert.Equal(t, s.Encrypt, len(s.SessionKey) > 0,
			"%s: session key present iff encrypting", s.Name)
		if s.Encrypt {
			assert.Len(t, s.SessionKey, 32, s.Name)
		}

		assert.False(t, offsets[s.MinuteOffset],
			"%s: minute offsets must be distinct so every vector has its own Date", s.Name)
		offsets[s.MinuteOffset] = true

		assert.NotEmpty(t, s.Subject, s.Name)
	}
}

func TestScenarioNames(t *testing.T) {
	names := ScenarioNames()
	assert.Len(t, names, len(scenarios))
	assert.True(t, sort.StringsAreSorted(names), "enumeration order is sorted: %v", names)
	assert.Contains(t, names, "unfortunately-complex")
	assert.Contains(t, names, "smime-onepart-signed")
}

func TestScenarioTimestamp(t *testing.T) {
	s, err := LookupScenario("pgpmime-signed")
	require.NoError(t, err)

	ts := s.Timestamp()
	assert.Equal(t, ts, s.Timestamp(), "timestamp must not depend on the wall clock")
	assert.Equal(t, 0, ts.Second(), "base is rounded to the hour")
	assert.Equal(t, s.MinuteOffset, ts.Minute())
	assert.Equal(t, "UTC", ts.Location().String())
}

func TestSessionKeysDistinct(t *testing.T) {
	seen := map[string]string{}
	for _, s := range scenarios {
		if !s.Encrypt {
			continue
		}
		k := string(s.SessionKey)
		assert.Empty(t, seen[k], "%s and %s share a session key", seen[k], s.Name)
		seen[k] = s.Name
	}
}
