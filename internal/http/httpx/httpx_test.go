package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/http/httpx"
)

type payload struct {
	Name string `json:"name" validate:"required"`
	Day  int    `json:"statement_day" validate:"min=1,max=31"`
}

func TestDecode(t *testing.T) {
	type testCase struct {
		name    string
		body    string
		wantErr string
	}

	tests := []testCase{
		{name: "Valid", body: `{"name":"Visa","statement_day":15}`},
		{name: "MissingName", body: `{"statement_day":15}`, wantErr: "name failed required"},
		{name: "DayOutOfRange", body: `{"name":"Visa","statement_day":32}`, wantErr: "statement_day failed max=31"},
		{name: "UnknownField", body: `{"name":"Visa","statement_day":1,"extra":true}`, wantErr: "invalid request body"},
		{name: "Malformed", body: `{`, wantErr: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var p payload
			err := httpx.Decode(req, &p)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Visa", p.Name)
		})
	}
}

func TestQueryDate(t *testing.T) {
	saigon := time.FixedZone("ICT", 7*60*60)
	req := httptest.NewRequest(http.MethodGet, "/?start_date=2025-04-01&bad=01/04/2025", nil)

	got, err := httpx.QueryDate(req, "start_date", saigon)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, saigon), *got)

	got, err = httpx.QueryDate(req, "missing", saigon)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = httpx.QueryDate(req, "bad", saigon)
	assert.Error(t, err)
}

func TestQueryRange(t *testing.T) {
	type testCase struct {
		name      string
		query     string
		wantStart *time.Time
		wantEnd   *time.Time
		wantErr   error
		anyErr    bool
	}

	loc := time.FixedZone("EST", -5*60*60)
	day := func(m time.Month, d int) *time.Time { return new(time.Date(2025, m, d, 0, 0, 0, 0, loc)) }

	tests := []testCase{
		{name: "NoBounds", query: ""},
		{name: "EndIsExclusiveNextDay", query: "end_date=2025-04-30", wantEnd: day(5, 1)},
		{name: "BothBounds", query: "start_date=2025-04-01&end_date=2025-04-01", wantStart: day(4, 1), wantEnd: day(4, 2)},
		{name: "StartAfterEnd", query: "start_date=2025-04-10&end_date=2025-04-09", wantErr: httpx.ErrInvalidRange},
		{name: "BadEnd", query: "end_date=tomorrow", anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			start, end, err := httpx.QueryRange(req, loc)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			if tt.anyErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestMonthOrRange(t *testing.T) {
	type testCase struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}

	loc := time.FixedZone("EST", -5*60*60)
	now := time.Date(2025, 4, 10, 22, 0, 0, 0, loc)
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, loc) }

	tests := []testCase{
		{name: "DefaultsToCurrentMonth", wantStart: day(4, 1), wantEnd: day(5, 1)},
		{name: "OnlyEnd", query: "end_date=2025-04-15", wantStart: day(4, 1), wantEnd: day(4, 16)},
		{name: "OnlyStart", query: "start_date=2025-04-05", wantStart: day(4, 5), wantEnd: day(5, 1)},
		{name: "EndBeforeDefaultStart", query: "end_date=2025-03-15", wantErr: true},
		{name: "StartAfterEnd", query: "start_date=2025-04-20&end_date=2025-04-19", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			start, end, err := httpx.MonthOrRange(req, now)

			if tt.wantErr {
				assert.ErrorIs(t, err, httpx.ErrInvalidRange)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
