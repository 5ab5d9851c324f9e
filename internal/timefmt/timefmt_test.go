package timefmt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixClock pins the package clock to 2024-05-01 10:00:00 local time.
func fixClock(t *testing.T) time.Time {
	t.Helper()
	fixed := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.Local)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })
	return fixed
}

func TestParseFlexible(t *testing.T) {
	fixClock(t)

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"canonical with seconds", "2024-06-15 09:30:45", "2024-06-15 09:30:45", true},
		{"full datetime", "2024-06-15 09:30", "2024-06-15 09:30:00", true},
		{"time only anchors to today", "14:30", "2024-05-01 14:30:00", true},
		{"single digit hour", "9:05", "2024-05-01 09:05:00", true},
		{"date only gets midnight", "2024-06-15", "2024-06-15 00:00:00", true},
		{"twelve hour with minutes", "2:30 PM", "2024-05-01 14:30:00", true},
		{"twelve hour lowercase", "2:30 pm", "2024-05-01 14:30:00", true},
		{"twelve hour only", "7 AM", "2024-05-01 07:00:00", true},
		{"leading whitespace", "  14:30  ", "2024-05-01 14:30:00", true},
		{"garbage", "not a time", "", false},
		{"empty", "", "", false},
		{"partial date", "2024-06", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFlexible(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.String())
				assert.True(t, got.Valid())
			}
		})
	}
}

func TestParseFlexibleRoundTrip(t *testing.T) {
	// Already-canonical input must survive parse-then-format unchanged.
	const canonical = "2031-12-24 18:45:09"
	st, ok := ParseFlexible(canonical)
	require.True(t, ok)
	assert.Equal(t, canonical, st.String())

	again, ok := ParseFlexible(st.String())
	require.True(t, ok)
	assert.Equal(t, canonical, again.String())
}

func TestIsFutureAndValid(t *testing.T) {
	fixClock(t)

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"future canonical", "2024-05-01 14:30:00", true},
		{"past canonical", "2024-05-01 09:59:59", false},
		{"exactly now is not future", "2024-05-01 10:00:00", false},
		{"flexible input rejected", "14:30", false},
		{"datetime without seconds rejected", "2024-05-01 14:30", false},
		{"garbage", "soon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFutureAndValid(tt.input))
		})
	}
}

func TestStampUnmarshalKeepsMalformedText(t *testing.T) {
	var st Stamp
	require.NoError(t, json.Unmarshal([]byte(`"next tuesday"`), &st))
	assert.False(t, st.Valid())
	assert.Equal(t, "next tuesday", st.String())

	// Re-marshaling emits the preserved text so a rewrite loses nothing.
	out, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Equal(t, `"next tuesday"`, string(out))
}

func TestStampUnmarshalNonString(t *testing.T) {
	var st Stamp
	require.NoError(t, json.Unmarshal([]byte(`12345`), &st))
	assert.False(t, st.Valid())
	assert.Equal(t, "12345", st.String())
}

func TestStampJSONRoundTrip(t *testing.T) {
	st, err := Parse("2024-06-15 09:30:45")
	require.NoError(t, err)

	out, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-15 09:30:45"`, string(out))

	var back Stamp
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.Valid())
	assert.Equal(t, st.String(), back.String())
	assert.True(t, back.Time().Equal(st.Time()))
}
