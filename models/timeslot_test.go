package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeSlot(t *testing.T) {
	tests := []struct {
		name                 string
		sh, sm, eh, em       int
		wantErr              bool
	}{
		{name: "working day", sh: 9, sm: 0, eh: 17, em: 0},
		{name: "reversed", sh: 17, sm: 0, eh: 9, em: 0, wantErr: true},
		{name: "empty", sh: 9, sm: 0, eh: 9, em: 0, wantErr: true},
		{name: "minutes decide", sh: 9, sm: 30, eh: 9, em: 15, wantErr: true},
		{name: "one minute", sh: 9, sm: 30, eh: 9, em: 31},
		{name: "until midnight", sh: 20, sm: 0, eh: 24, em: 0},
		{name: "hour out of range", sh: 9, sm: 0, eh: 25, em: 0, wantErr: true},
		{name: "minute out of range", sh: 9, sm: 60, eh: 10, em: 0, wantErr: true},
		{name: "negative start", sh: -1, sm: 0, eh: 10, em: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := NewTimeSlot(tt.sh, tt.sm, tt.eh, tt.em)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTimeRange))
				var rangeErr *TimeRangeError
				assert.True(t, errors.As(err, &rangeErr))
				return
			}
			require.NoError(t, err)
			assert.True(t, ts.EndTime().IsAfter(ts.StartTime()))
		})
	}
}

func TestNewTimeSlot_RejectsEveryNonIncreasingPair(t *testing.T) {
	for sh := 0; sh < 24; sh += 3 {
		for eh := 0; eh <= sh; eh += 3 {
			for _, m := range []int{0, 30} {
				_, err := NewTimeSlot(sh, m, eh, m)
				assert.ErrorIs(t, err, ErrInvalidTimeRange, "%02d:%02d-%02d:%02d", sh, m, eh, m)
			}
		}
	}
}

func TestTimeSlotBetween(t *testing.T) {
	ts, err := TimeSlotBetween(Clock(9, 0), Clock(17, 0))
	require.NoError(t, err)
	assert.Equal(t, MustTimeSlot(9, 0, 17, 0), ts)
	assert.Equal(t, 9*time.Hour, ts.Start())
	assert.Equal(t, 17*time.Hour, ts.End())
	assert.Equal(t, 8*time.Hour, ts.Duration())
	assert.Equal(t, "09:00-17:00", ts.String())

	_, err = TimeSlotBetween(Clock(17, 0), Clock(9, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestTimeSlot_ZeroValueIsInvalid(t *testing.T) {
	assert.ErrorIs(t, TimeSlot{}.Validate(), ErrInvalidTimeRange)
}

func TestTimeSlot_ContainsIsExclusive(t *testing.T) {
	ts := MustTimeSlot(9, 0, 17, 0)

	assert.False(t, ts.Contains(9*time.Hour))
	assert.False(t, ts.Contains(17*time.Hour))
	assert.True(t, ts.Contains(9*time.Hour+time.Second))
	assert.True(t, ts.Contains(12*time.Hour))
	assert.False(t, ts.Contains(8*time.Hour))
}

func TestTimeSlot_Overlaps(t *testing.T) {
	morning := MustTimeSlot(8, 0, 12, 0)
	assert.True(t, morning.Overlaps(MustTimeSlot(11, 0, 13, 0)))
	assert.False(t, morning.Overlaps(MustTimeSlot(12, 0, 13, 0)))
	assert.True(t, morning.Overlaps(MustTimeSlot(9, 0, 10, 0)))
}

func TestTimeSlot_JSON(t *testing.T) {
	b, err := json.Marshal(MustTimeSlot(9, 15, 17, 45))
	require.NoError(t, err)
	assert.JSONEq(t, `{"startHour":9,"startMinute":15,"endHour":17,"endMinute":45}`, string(b))

	var ts TimeSlot
	require.NoError(t, json.Unmarshal(b, &ts))
	assert.Equal(t, MustTimeSlot(9, 15, 17, 45), ts)

	err = json.Unmarshal([]byte(`{"startHour":17,"startMinute":0,"endHour":9,"endMinute":0}`), &ts)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestTimeSlot_JSONClockForm(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    TimeSlot
		wantErr bool
	}{
		{name: "day shift", body: `{"start":"09:00","end":"17:30"}`, want: MustTimeSlot(9, 0, 17, 30)},
		{name: "until midnight", body: `{"start":"20:00","end":"24:00"}`, want: MustTimeSlot(20, 0, 24, 0)},
		{name: "reversed", body: `{"start":"17:00","end":"09:00"}`, wantErr: true},
		{name: "missing end", body: `{"start":"09:00"}`, wantErr: true},
		{name: "not a clock", body: `{"start":"nine","end":"17:00"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts TimeSlot
			err := json.Unmarshal([]byte(tt.body), &ts)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts)
		})
	}
}

func TestValidateSlots(t *testing.T) {
	overlapping := []TimeSlot{MustTimeSlot(9, 0, 12, 0), MustTimeSlot(11, 0, 14, 0)}

	assert.NoError(t, ValidateSlots(overlapping, false))
	assert.ErrorIs(t, ValidateSlots(overlapping, true), ErrOverlappingSlots)
	assert.NoError(t, ValidateSlots([]TimeSlot{MustTimeSlot(13, 0, 17, 0), MustTimeSlot(9, 0, 13, 0)}, true))
	assert.ErrorIs(t, ValidateSlots([]TimeSlot{{}}, false), ErrInvalidTimeRange)
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(9, 30), tod)

	_, err = ParseTimeOfDay("nine")
	assert.Error(t, err)
}
