package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverallStatus(t *testing.T) {
	loaded := false
	storeErr := error(nil)

	c := NewChecker()
	c.RegisterFunc("english", false, DictionaryCheck("en.pht", func() bool { return loaded }, func() int { return 3 }))
	c.RegisterFunc("store", true, StoreCheck(func(context.Context) error { return storeErr }))

	assert.Equal(t, StatusHealthy, c.OverallStatus())

	results := c.Check(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, StatusDegraded, results["english"].Status)
	assert.Equal(t, StatusDegraded, c.OverallStatus())

	loaded = true
	results = c.Check(context.Background())
	assert.Equal(t, 3, results["english"].Details["words"])
	assert.Equal(t, StatusHealthy, c.OverallStatus())

	storeErr = errors.New("disk I/O error")
	results = c.Check(context.Background())
	assert.Equal(t, "disk I/O error", results["store"].Error)
	assert.Equal(t, StatusUnhealthy, c.OverallStatus())
}

func TestCriticalUnknown(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("store", true, StoreCheck(func(context.Context) error { return nil }))
	assert.Equal(t, StatusUnknown, c.OverallStatus())
	assert.Equal(t, []string{"store"}, c.Names())
}

func TestCheckTimeout(t *testing.T) {
	c := NewChecker()
	c.Register(&Component{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Check: func(ctx context.Context) CheckResult {
			time.Sleep(200 * time.Millisecond)
			return CheckResult{Status: StatusHealthy}
		},
	})

	res := c.Check(context.Background())["slow"]
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Contains(t, res.Error, "timed out")
	assert.Equal(t, StatusDegraded, c.OverallStatus())
}

func TestHandler(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("store", true, StoreCheck(func(context.Context) error { return nil }))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	c.SetReady(true)
	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusHealthy, report.Status)
	assert.True(t, report.Ready)
	assert.Equal(t, StatusHealthy, report.Components["store"].Status)

	rec = httptest.NewRecorder()
	c.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}
