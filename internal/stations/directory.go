package stations

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Hsiii/MomComePickMeUp/internal/tdx"
)

// Station is the normalized station shape served to clients. Coordinates are
// optional; some records upstream carry no position.
type Station struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	NameEn string   `json:"nameEn"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
}

// Source is the slice of the upstream API the directory needs.
// *tdx.Client satisfies it.
type Source interface {
	Stations(ctx context.Context) ([]tdx.StationRecord, error)
}

const directoryKey = "stations"

// Directory serves the full station list, refreshing from upstream at most
// once per TTL window on the happy path. The whole list lives under a single
// cache slot and is overwritten wholesale on refresh.
type Directory struct {
	src   Source
	ttl   time.Duration
	cache *gocache.Cache
}

func NewDirectory(src Source, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Directory{
		src:   src,
		ttl:   ttl,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// List returns the station directory, from cache when fresh. A refresh
// failure propagates to the caller and leaves the slot untouched, so the next
// call retries. Concurrent callers racing an expired slot may each trigger a
// fetch; the result is idempotent so the duplicate round-trip is accepted.
func (d *Directory) List(ctx context.Context) ([]Station, error) {
	if cached, ok := d.cache.Get(directoryKey); ok {
		return cached.([]Station), nil
	}

	records, err := d.src.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("stations: refresh directory: %w", err)
	}

	list := make([]Station, 0, len(records))
	for _, rec := range records {
		st := Station{
			ID:     rec.StationID,
			Name:   rec.StationName.ZhTw,
			NameEn: rec.StationName.En,
		}
		if rec.StationPosition != nil {
			st.Lat = rec.StationPosition.PositionLat
			st.Lon = rec.StationPosition.PositionLon
		}
		list = append(list, st)
	}

	d.cache.Set(directoryKey, list, d.ttl)
	return list, nil
}
