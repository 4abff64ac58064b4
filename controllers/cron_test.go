package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/accrual"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/config"
)

type fakeRunner struct {
	report *accrual.RunReport
	err    error
	calls  int
}

func (f *fakeRunner) Run(ctx context.Context, now time.Time) (*accrual.RunReport, error) {
	f.calls++
	return f.report, f.err
}

func newCronRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v3/cron/daily-interest", nil)
	if key != "" {
		req.Header.Set("X-CRON-KEY", key)
	}
	return req
}

func TestCronDailyInterest_RejectsBadKey(t *testing.T) {
	runner := &fakeRunner{}
	c := NewCronController(&config.Config{CronKey: "topsecret"}, runner)

	for _, key := range []string{"", "wrong", "topsecret "} {
		rec := httptest.NewRecorder()
		c.DailyInterest(rec, newCronRequest(key))

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "key %q", key)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Unauthorized", body["error"])
	}
	assert.Equal(t, 0, runner.calls, "no run may start without a valid key")
}

func TestCronDailyInterest_RunCompleted(t *testing.T) {
	amount := decimal.RequireFromString("3530")
	runner := &fakeRunner{report: &accrual.RunReport{
		RunID:         "run-1",
		Processed:     2,
		Errors:        1,
		TotalInterest: amount,
		Details: []accrual.AccountResult{
			{AccountID: 1, Amount: &amount, Success: true},
			{AccountID: 2, Error: "write failed", Success: false},
		},
	}}
	c := NewCronController(&config.Config{CronKey: "topsecret"}, runner)

	rec := httptest.NewRecorder()
	c.DailyInterest(rec, newCronRequest("topsecret"))

	// Partial failure is still a completed run.
	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Results struct {
			Processed int `json:"processed"`
			Errors    int `json:"errors"`
			Details   []struct {
				AccountID uint   `json:"account_id"`
				Error     string `json:"error"`
				Success   bool   `json:"success"`
			} `json:"details"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Results.Processed)
	assert.Equal(t, 1, body.Results.Errors)
	require.Len(t, body.Results.Details, 2)
	assert.False(t, body.Results.Details[1].Success)
	assert.Equal(t, "write failed", body.Results.Details[1].Error)
}

func TestCronDailyInterest_AlreadyRan(t *testing.T) {
	runner := &fakeRunner{
		report: &accrual.RunReport{RunID: "run-1", Processed: 5},
		err:    accrual.ErrAlreadyRan,
	}
	c := NewCronController(&config.Config{CronKey: "topsecret"}, runner)

	rec := httptest.NewRecorder()
	c.DailyInterest(rec, newCronRequest("topsecret"))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "already processed")
}

func TestCronDailyInterest_SystemicFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("account enumeration failed: connection refused")}
	c := NewCronController(&config.Config{CronKey: "topsecret"}, runner)

	rec := httptest.NewRecorder()
	c.DailyInterest(rec, newCronRequest("topsecret"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "enumeration")
}
