package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Hsiii/MomComePickMeUp/internal/tdx"
)

// ErrBadDate rejects a malformed date parameter before any upstream fetch.
var ErrBadDate = errors.New("invalid 'date' parameter; expected YYYY-MM-DD")

// Source is the slice of the upstream API the resolver needs.
// *tdx.Client satisfies it.
type Source interface {
	DailyTimetable(ctx context.Context, date string, today bool) ([]tdx.TrainTimetable, error)
	LiveDelays(ctx context.Context) ([]tdx.LiveDelay, error)
}

// Resolver joins the daily timetable with the live delay feed and filters the
// result down to trains that serve a station pair in the right order.
type Resolver struct {
	src Source
	loc *time.Location
	now func() time.Time
}

func NewResolver(src Source, loc *time.Location) *Resolver {
	return &Resolver{src: src, loc: loc, now: time.Now}
}

// Resolve returns all trains calling at origin then dest on the given service
// date, sorted by departure time. An empty date means today in the resolver's
// time zone. Unknown station ids are not an error; they simply match nothing.
func (r *Resolver) Resolve(ctx context.Context, origin, dest, date string) (*Response, error) {
	today := r.now().In(r.loc).Format(time.DateOnly)
	if date == "" {
		date = today
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, ErrBadDate
	}

	// The dated feed and the Today feed return the same logical shape; Today
	// is just the faster path for the common case.
	var (
		timetables []tdx.TrainTimetable
		delays     []tdx.LiveDelay
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if timetables, err = r.src.DailyTimetable(gctx, date, date == today); err != nil {
			return fmt.Errorf("fetch timetable: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if delays, err = r.src.LiveDelays(gctx); err != nil {
			return fmt.Errorf("fetch live delays: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// last write wins, though the feed should not carry duplicates
	delayByTrain := make(map[string]int, len(delays))
	for _, d := range delays {
		delayByTrain[d.TrainNo] = d.DelayTime
	}

	trains := make([]TrainInfo, 0)
	for _, t := range timetables {
		originIdx, destIdx := -1, -1
		// single pass; first occurrence wins on both ends, which matters for
		// loop services that can visit a station twice
		for i, stop := range t.StopTimes {
			if originIdx < 0 && stop.StationID == origin {
				originIdx = i
			}
			if destIdx < 0 && stop.StationID == dest {
				destIdx = i
			}
		}
		// drop trains missing either stop or visiting them in reverse order
		if originIdx < 0 || destIdx < 0 || destIdx <= originIdx {
			continue
		}

		info := TrainInfo{
			TrainNo:            t.TrainInfo.TrainNo,
			TrainType:          t.TrainInfo.TrainTypeName.ZhTw,
			Direction:          t.TrainInfo.Direction,
			OriginStation:      t.StopTimes[originIdx].StationName.ZhTw,
			DestinationStation: t.StopTimes[destIdx].StationName.ZhTw,
			DepartureTime:      t.StopTimes[originIdx].DepartureTime,
			ArrivalTime:        t.StopTimes[destIdx].ArrivalTime,
			Status:             StatusUnknown,
		}
		if delay, ok := delayByTrain[info.TrainNo]; ok {
			info.Delay = delay
			if delay > 0 {
				info.Status = StatusDelayed
			} else {
				info.Status = StatusOnTime
			}
		}
		trains = append(trains, info)
	}

	// zero-padded HH:mm compares correctly as a string within one service day
	sort.SliceStable(trains, func(i, j int) bool {
		return trains[i].DepartureTime < trains[j].DepartureTime
	})

	return &Response{
		Date:        date,
		Origin:      Terminal{ID: origin, Name: origin},
		Destination: Terminal{ID: dest, Name: dest},
		Trains:      trains,
	}, nil
}
