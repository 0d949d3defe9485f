package tdx

// Name is the bilingual name object used throughout the TDX v3 payloads.
type Name struct {
	ZhTw string `json:"Zh_tw"`
	En   string `json:"En"`
}

// LiveDelay is one entry of the live delay feed, minutes relative to schedule.
type LiveDelay struct {
	TrainNo   string `json:"TrainNo"`
	DelayTime int    `json:"DelayTime"`
}

type liveDelayEnvelope struct {
	LiveTrainDelays []LiveDelay `json:"LiveTrainDelays"`
}

// StopTime is a single scheduled stop within a train's stop sequence.
type StopTime struct {
	StopSequence  int    `json:"StopSequence"`
	StationID     string `json:"StationID"`
	StationName   Name   `json:"StationName"`
	ArrivalTime   string `json:"ArrivalTime"`
	DepartureTime string `json:"DepartureTime"`
}

// TrainInfo carries the per-train header of a daily timetable entry.
type TrainInfo struct {
	TrainNo       string `json:"TrainNo"`
	TrainTypeName Name   `json:"TrainTypeName"`
	Direction     int    `json:"Direction"`
}

// TrainTimetable is one train of the daily timetable with its ordered stops.
type TrainTimetable struct {
	TrainInfo TrainInfo  `json:"TrainInfo"`
	StopTimes []StopTime `json:"StopTimes"`
}

type timetableEnvelope struct {
	TrainTimetables []TrainTimetable `json:"TrainTimetables"`
}

// Position is the optional WGS84 coordinate pair attached to a station.
type Position struct {
	PositionLat *float64 `json:"PositionLat,omitempty"`
	PositionLon *float64 `json:"PositionLon,omitempty"`
}

// StationRecord is one station of the TRA station list.
type StationRecord struct {
	StationID       string    `json:"StationID"`
	StationName     Name      `json:"StationName"`
	StationPosition *Position `json:"StationPosition,omitempty"`
}

type stationEnvelope struct {
	Stations []StationRecord `json:"Stations"`
}
