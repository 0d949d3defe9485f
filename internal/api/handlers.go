package api

import (
	"errors"
	"net/http"

	"github.com/Hsiii/MomComePickMeUp/internal/schedule"
)

// GET /schedule?origin={id}&dest={id}&date={YYYY-MM-DD}
// Returns the candidate trains between the two stations, joined with live
// delay data. date is optional and defaults to today in the service time zone.
func (s *Server) getScheduleHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	origin := query.Get("origin")
	dest := query.Get("dest")

	if origin == "" || dest == "" {
		writeError(w, http.StatusBadRequest, "Missing origin or dest parameters")
		return
	}

	resp, err := s.resolver.Resolve(r.Context(), origin, dest, query.Get("date"))
	if err != nil {
		if errors.Is(err, schedule.ErrBadDate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Printf("api: schedule resolve failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /stations
// Returns the full station directory. Stations rarely change, so the response
// also carries CDN cache hints for a day.
func (s *Server) getStationsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.dir.List(r.Context())
	if err != nil {
		s.logger.Printf("api: station directory refresh failed: %v", err)
		// generic message outside development to avoid information disclosure
		msg := "Failed to fetch stations. Please try again."
		if s.dev {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	w.Header().Set("Cache-Control", "s-maxage=86400, stale-while-revalidate=604800")
	writeJSON(w, http.StatusOK, list)
}
