package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "hh:mm", input: "07:00", want: "07:00"},
		{name: "with seconds from db", input: "18:30:00", want: "18:30"},
		{name: "single digit hour is normalized", input: "7:00", want: "07:00"},
		{name: "garbage", input: "noon", wantErr: true},
		{name: "out of range", input: "25:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("07:30").AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:00"), got)

	_, err = TimeString("23:30").AddMinutes(30)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("07:00").IsBefore("08:00"))
	assert.False(t, TimeString("08:00").IsBefore("08:00"))
	assert.True(t, TimeString("21:00").IsAfter("09:59"))
}

func TestTimeString_On(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, loc)

	got, err := TimeString("07:15").On(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 10, 7, 15, 0, 0, loc), got)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 6, 45, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("06:45"), ts)

	require.NoError(t, ts.Scan([]byte("20:00:00")))
	assert.Equal(t, TimeString("20:00"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}
