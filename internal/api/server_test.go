package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hsiii/MomComePickMeUp/internal/config"
	"github.com/Hsiii/MomComePickMeUp/internal/schedule"
	"github.com/Hsiii/MomComePickMeUp/internal/stations"
)

type fakeResolver struct {
	resp *schedule.Response
	err  error
}

func (f *fakeResolver) Resolve(ctx context.Context, origin, dest, date string) (*schedule.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &schedule.Response{
		Date:        "2025-03-15",
		Origin:      schedule.Terminal{ID: origin, Name: origin},
		Destination: schedule.Terminal{ID: dest, Name: dest},
		Trains:      []schedule.TrainInfo{},
	}, nil
}

type fakeDirectory struct {
	list []stations.Station
	err  error
}

func (f *fakeDirectory) List(ctx context.Context) ([]stations.Station, error) {
	return f.list, f.err
}

func newTestServer(t *testing.T, resolver Resolver, dir Directory, dev bool) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	s := NewServer(config.ServerConfig{Addr: ":0"}, resolver, dir, dev, logger)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestScheduleMissingParams(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{}, &fakeDirectory{}, false)

	for _, url := range []string{
		srv.URL + "/schedule",
		srv.URL + "/schedule?origin=1000",
		srv.URL + "/schedule?dest=4220",
	} {
		resp, err := http.Get(url)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body["error"])
	}
}

func TestScheduleOK(t *testing.T) {
	resolver := &fakeResolver{
		resp: &schedule.Response{
			Date:        "2025-03-15",
			Origin:      schedule.Terminal{ID: "1000", Name: "1000"},
			Destination: schedule.Terminal{ID: "4220", Name: "4220"},
			Trains: []schedule.TrainInfo{
				{TrainNo: "152", DepartureTime: "08:00", ArrivalTime: "09:00", Status: schedule.StatusOnTime},
			},
		},
	}
	srv := newTestServer(t, resolver, &fakeDirectory{}, false)

	resp, err := http.Get(srv.URL + "/schedule?origin=1000&dest=4220")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var body schedule.Response
	decodeBody(t, resp, &body)
	require.Len(t, body.Trains, 1)
	assert.Equal(t, "152", body.Trains[0].TrainNo)
}

func TestScheduleBadDate(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{err: schedule.ErrBadDate}, &fakeDirectory{}, false)

	resp, err := http.Get(srv.URL + "/schedule?origin=1000&dest=4220&date=bogus")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestScheduleUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{err: errors.New("fetch timetable: status 503")}, &fakeDirectory{}, false)

	resp, err := http.Get(srv.URL + "/schedule?origin=1000&dest=4220")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "status 503")
}

func TestStationsOK(t *testing.T) {
	dir := &fakeDirectory{
		list: []stations.Station{{ID: "1000", Name: "臺北", NameEn: "Taipei"}},
	}
	srv := newTestServer(t, &fakeResolver{}, dir, false)

	resp, err := http.Get(srv.URL + "/stations")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "s-maxage=86400, stale-while-revalidate=604800", resp.Header.Get("Cache-Control"))

	var body []stations.Station
	decodeBody(t, resp, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "1000", body[0].ID)
}

func TestStationsErrorGenericized(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("tdx: fetch stations: unexpected status 503")}

	srv := newTestServer(t, &fakeResolver{}, dir, false)
	resp, err := http.Get(srv.URL + "/stations")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Failed to fetch stations. Please try again.", body["error"])

	// development mode exposes the real message
	devSrv := newTestServer(t, &fakeResolver{}, dir, true)
	resp, err = http.Get(devSrv.URL + "/stations")
	require.NoError(t, err)
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "status 503")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{}, &fakeDirectory{}, false)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}
