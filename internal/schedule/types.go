package schedule

// Train status values. "cancelled" is reserved: the live delay feed carries no
// cancellation signal today, so the resolver never produces it.
const (
	StatusOnTime    = "on-time"
	StatusDelayed   = "delayed"
	StatusCancelled = "cancelled"
	StatusUnknown   = "unknown"
)

// TrainInfo is one candidate train between the queried station pair.
// Derived per query, never persisted.
type TrainInfo struct {
	TrainNo            string `json:"trainNo"`
	TrainType          string `json:"trainType"`
	Direction          int    `json:"direction"` // 0: clockwise (shun), 1: counter-clockwise (ni)
	OriginStation      string `json:"originStation"`
	DestinationStation string `json:"destinationStation"`
	DepartureTime      string `json:"departureTime"` // HH:mm
	ArrivalTime        string `json:"arrivalTime"`   // HH:mm
	Delay              int    `json:"delay"`         // minutes, 0 = on time
	Status             string `json:"status"`
}

// Terminal echoes a queried endpoint. Name defaults to the raw id; richer
// station data is not threaded through the resolver.
type Terminal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Response is the resolved schedule for one origin/destination/date query,
// trains sorted ascending by departure time.
type Response struct {
	Date        string      `json:"date"`
	Origin      Terminal    `json:"origin"`
	Destination Terminal    `json:"destination"`
	Trains      []TrainInfo `json:"trains"`
}
