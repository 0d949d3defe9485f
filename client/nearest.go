package client

import "math"

// Nearest picks the station closest to (lat, lon) by planar Euclidean
// distance over raw degrees. Stations without coordinates are skipped.
// Accurate enough at island scale; no need for haversine here.
func Nearest(list []Station, lat, lon float64) (Station, bool) {
	var best Station
	found := false
	min := math.MaxFloat64

	for _, s := range list {
		if s.Lat == nil || s.Lon == nil {
			continue
		}
		d := math.Hypot(*s.Lat-lat, *s.Lon-lon)
		if d < min {
			min = d
			best = s
			found = true
		}
	}
	return best, found
}
