package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Validate(t *testing.T) {
	assert.NoError(t, ID("550e8400-e29b-41d4-a716-446655440000").Validate())
	assert.NoError(t, NewID().Validate())

	err := ID("").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")

	err = ID("not-a-uuid").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ID format")
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	ts := Timestamp(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T10:30:00Z"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, time.Time(ts).Equal(time.Time(back)))

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &back))
	assert.Error(t, json.Unmarshal([]byte(`42`), &back))
}

func TestAPIResponse(t *testing.T) {
	ok := NewSuccessResponse([]int{1, 2})
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)

	bad := NewErrorResponse("MC_005", "unknown rule")
	assert.False(t, bad.Success)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "MC_005", bad.Error.Code)

	data, err := json.Marshal(bad)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"unknown rule"`)
}

//Personal.AI order the ending
