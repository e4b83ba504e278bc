package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var req CreateGrievanceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"dateRaised":"2026-01-31","user":{"id":4}}`), &req))
	require.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), req.DateRaised.Time)
	require.Equal(t, int64(4), *req.User.ID)

	req = CreateGrievanceRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"dateRaised":null}`), &req))
	require.Nil(t, req.DateRaised)

	require.Error(t, json.Unmarshal([]byte(`{"dateRaised":"31/01/2026"}`), &req))

	out, err := json.Marshal(GrievanceResponse{DateRaised: Date{time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)}})
	require.NoError(t, err)
	require.Contains(t, string(out), `"dateRaised":"2026-03-14"`)
}

func TestUpdateRequestDistinguishesAbsentFromEmpty(t *testing.T) {
	var req UpdateGrievanceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"category":"","status":null}`), &req))
	require.NotNil(t, req.Category)
	require.Equal(t, "", *req.Category)
	require.Nil(t, req.Status)
	require.Nil(t, req.Description)
}
