package stations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hsiii/MomComePickMeUp/internal/tdx"
)

type fakeSource struct {
	records []tdx.StationRecord
	err     error
	calls   int
}

func (f *fakeSource) Stations(ctx context.Context) ([]tdx.StationRecord, error) {
	f.calls++
	return f.records, f.err
}

func coord(v float64) *float64 { return &v }

func testRecords() []tdx.StationRecord {
	return []tdx.StationRecord{
		{
			StationID:       "1000",
			StationName:     tdx.Name{ZhTw: "臺北", En: "Taipei"},
			StationPosition: &tdx.Position{PositionLat: coord(25.0478), PositionLon: coord(121.517)},
		},
		{
			StationID:   "4220",
			StationName: tdx.Name{ZhTw: "臺中", En: "Taichung"},
		},
	}
}

func TestListNormalizesRecords(t *testing.T) {
	src := &fakeSource{records: testRecords()}
	d := NewDirectory(src, time.Hour)

	list, err := d.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "1000", list[0].ID)
	assert.Equal(t, "臺北", list[0].Name)
	assert.Equal(t, "Taipei", list[0].NameEn)
	require.NotNil(t, list[0].Lat)
	assert.InDelta(t, 25.0478, *list[0].Lat, 1e-9)

	// missing coordinates stay nil rather than defaulting to zero
	assert.Nil(t, list[1].Lat)
	assert.Nil(t, list[1].Lon)
}

func TestListServesFromCacheWithinTTL(t *testing.T) {
	src := &fakeSource{records: testRecords()}
	d := NewDirectory(src, time.Hour)

	first, err := d.List(context.Background())
	require.NoError(t, err)
	second, err := d.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first, second)
}

func TestListRefreshesAfterExpiry(t *testing.T) {
	src := &fakeSource{records: testRecords()}
	d := NewDirectory(src, 30*time.Millisecond)

	_, err := d.List(context.Background())
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestListFetchFailurePropagates(t *testing.T) {
	src := &fakeSource{err: errors.New("status 503")}
	d := NewDirectory(src, time.Hour)

	_, err := d.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh directory")

	// nothing cached; the next call retries upstream
	src.err = nil
	src.records = testRecords()
	list, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, src.calls)
}
