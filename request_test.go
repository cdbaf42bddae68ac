package pearch

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_IncludesQueryLimitAndAllFlags(t *testing.T) {
	flags := []string{"insights", "high_freshness", "show_emails", "show_phone_numbers", "profile_scoring"}

	for mask := 0; mask < 1<<len(flags); mask++ {
		p := Params{
			Query:            "go engineers",
			Insights:         mask&1 != 0,
			HighFreshness:    mask&2 != 0,
			ShowEmails:       mask&4 != 0,
			ShowPhoneNumbers: mask&8 != 0,
			ProfileScoring:   mask&16 != 0,
		}
		req, err := BuildRequest(p)
		require.NoError(t, err)

		b, err := json.Marshal(req)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(b, &body))

		assert.Equal(t, "go engineers", body["query"])
		assert.Equal(t, float64(DefaultLimit), body["limit"])
		want := map[string]bool{
			"insights":           p.Insights,
			"high_freshness":     p.HighFreshness,
			"show_emails":        p.ShowEmails,
			"show_phone_numbers": p.ShowPhoneNumbers,
			"profile_scoring":    p.ProfileScoring,
		}
		for _, f := range flags {
			v, ok := body[f]
			require.Truef(t, ok, "flag %s missing for mask %d", f, mask)
			assert.Equal(t, want[f], v, "flag %s", f)
		}
	}
}

func TestBuildRequest_TypeOmittedWhenEmpty(t *testing.T) {
	req, err := BuildRequest(Params{Query: "x", Type: "   "})
	require.NoError(t, err)

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"type"`)

	req, err = BuildRequest(Params{Query: "x", Type: " Pro "})
	require.NoError(t, err)
	assert.Equal(t, SearchPro, req.Type)
}

func TestBuildRequest_Limit(t *testing.T) {
	req, err := BuildRequest(Params{Query: "x", Limit: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, req.Limit)

	req, err = BuildRequest(Params{Query: "x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, req.Limit)
}

func TestBuildRequest_QueryKeptVerbatim(t *testing.T) {
	req, err := BuildRequest(Params{Query: "  padded  "})
	require.NoError(t, err)
	assert.Equal(t, "  padded  ", req.Query)
}

func TestBuildRequest_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		params    Params
		wantField string
	}{
		{"empty query", Params{Query: ""}, "query"},
		{"whitespace query", Params{Query: " \t\n "}, "query"},
		{"negative limit", Params{Query: "x", Limit: -1}, "limit"},
		{"unknown type", Params{Query: "x", Type: "slow"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRequest(tt.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestNewPollConfig(t *testing.T) {
	tests := []struct {
		name         string
		maxWait      int
		interval     int
		wantMaxWait  int
		wantInterval int
		wantErr      bool
	}{
		{"defaults", 0, 0, 600, 15, false},
		{"bounds low", 10, 2, 10, 2, false},
		{"bounds high", 3600, 60, 3600, 60, false},
		{"max wait too small", 9, 2, 0, 0, true},
		{"max wait too large", 3601, 2, 0, 0, true},
		{"interval too small", 10, 1, 0, 0, true},
		{"interval too large", 10, 61, 0, 0, true},
		{"negative", -5, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewPollConfig(tt.maxWait, tt.interval)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMaxWait, int(cfg.MaxWait.Seconds()))
			assert.Equal(t, tt.wantInterval, int(cfg.Interval.Seconds()))
		})
	}
}

func TestNewPollConfig_ErrorNamesField(t *testing.T) {
	_, err := NewPollConfig(10, 100)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pollingInterval", verr.Field)
	assert.Contains(t, verr.Error(), "60")
}

func TestParams_PollConfig(t *testing.T) {
	cfg, err := Params{MaxWaitTime: 30, PollingInterval: 5}.PollConfig()
	require.NoError(t, err)
	assert.Equal(t, PollConfig{MaxWait: 30 * time.Second, Interval: 5 * time.Second}, cfg)
}
