package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coord(v float64) *float64 { return &v }

func TestNearestPicksClosestStation(t *testing.T) {
	list := []Station{
		{ID: "1000", Name: "臺北", Lat: coord(25.0478), Lon: coord(121.517)},
		{ID: "4400", Name: "高雄", Lat: coord(22.6394), Lon: coord(120.303)},
		{ID: "7000", Name: "花蓮", Lat: coord(23.993), Lon: coord(121.601)},
	}

	// somewhere in Taipei
	st, ok := Nearest(list, 25.03, 121.50)
	require.True(t, ok)
	assert.Equal(t, "1000", st.ID)

	// down south
	st, ok = Nearest(list, 22.7, 120.4)
	require.True(t, ok)
	assert.Equal(t, "4400", st.ID)
}

func TestNearestSkipsStationsWithoutCoordinates(t *testing.T) {
	list := []Station{
		{ID: "9999", Name: "無座標"},
		{ID: "1000", Name: "臺北", Lat: coord(25.0478), Lon: coord(121.517)},
	}

	st, ok := Nearest(list, 0, 0)
	require.True(t, ok)
	assert.Equal(t, "1000", st.ID)
}

func TestNearestEmptyWhenNoCoordinates(t *testing.T) {
	list := []Station{{ID: "9999"}, {ID: "8888"}}

	_, ok := Nearest(list, 25, 121)
	assert.False(t, ok)
}
