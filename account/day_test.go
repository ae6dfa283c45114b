package account

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"2024-01-15T23:30:00-05:00", "2024-01-15", true},
		{"2024-01-15T10:00:00Z", "2024-01-15", true},
		{"2024-01-15 08:15:00", "2024-01-15", true},
		{"2024-01-15 08:15", "2024-01-15", true},
		{"2024-02-30", "", false},
		{"not-a-date", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := DayKey(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDayKeyOf(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-10", DayKeyOf(ts, nil))
	assert.Equal(t, "2024-03-09", DayKeyOf(ts, time.FixedZone("EST", -5*3600)))
}

func TestDaySet(t *testing.T) {
	t.Parallel()

	s := NewDaySet("2024-01-03", "2024-01-01", "2024-01-03")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("2024-01-01"))
	assert.False(t, s.Has("2024-01-02"))
	assert.Equal(t, []string{"2024-01-01", "2024-01-03"}, s.Sorted())

	c := s.Clone()
	assert.True(t, s.Equal(c))
	c.Add("2024-01-09")
	assert.False(t, s.Equal(c))
	assert.Equal(t, 2, s.Len())
}

func TestTradeValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Trade{Date: "2024-01-01", PnL: -5}.Valid())
	assert.False(t, Trade{Date: "2024-01-01", PnL: math.NaN()}.Valid())
	assert.False(t, Trade{Date: "2024-01-01", PnL: math.Inf(1)}.Valid())
	assert.False(t, Trade{Date: "not-a-date", PnL: 5}.Valid())
}
