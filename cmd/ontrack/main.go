// Command ontrack is a terminal companion to the OnTrack API: it looks up the
// next trains between two stations and prints the arrival message to share.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Hsiii/MomComePickMeUp/client"
	"github.com/Hsiii/MomComePickMeUp/internal/prefs"
	"github.com/Hsiii/MomComePickMeUp/internal/share"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "OnTrack API base URL")
	origin := flag.String("origin", "", "origin station id (falls back to saved preference)")
	dest := flag.String("dest", "", "destination station id (falls back to saved preference)")
	date := flag.String("date", "", "service date YYYY-MM-DD (default: today)")
	listStations := flag.Bool("stations", false, "list all stations and exit")
	near := flag.String("near", "", "pick origin nearest to \"lat,lon\"")
	prefsPath := flag.String("prefs", defaultPrefsPath(), "preferences store path")
	flag.Parse()

	logger := log.New(os.Stderr, "[ontrack] ", log.LstdFlags)
	ctx := context.Background()

	store, err := prefs.Open(*prefsPath)
	if err != nil {
		logger.Fatalf("failed to open preferences: %v", err)
	}
	defer store.Close()

	c := client.New(*base)

	if *listStations {
		if err := printStations(ctx, c); err != nil {
			logger.Fatalf("%v", err)
		}
		return
	}

	if *near != "" {
		id, err := nearestOrigin(ctx, c, *near)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		*origin = id
	}

	originID, destID, err := resolveEndpoints(store, *origin, *dest)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	resp, err := c.Schedule(ctx, originID, destID, *date)
	if err != nil {
		logger.Fatalf("failed to fetch schedule: %v", err)
	}

	names, err := stationNames(ctx, c)
	if err != nil {
		// names are cosmetic; ids still identify the stations
		logger.Printf("station directory unavailable: %v", err)
		names = map[string]string{}
	}

	printSchedule(resp, names)

	if len(resp.Trains) == 0 {
		fmt.Println(share.NoTrainMessage)
		return
	}

	tpl, err := store.Template()
	if err != nil {
		logger.Fatalf("failed to load template: %v", err)
	}
	msg := share.Render(tpl, resp.Trains[0], displayName(names, originID), displayName(names, destID))
	fmt.Printf("\nShare: %s\n", msg)
}

func defaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ontrack.db"
	}
	return filepath.Join(home, ".ontrack", "prefs.db")
}

// resolveEndpoints merges flags with saved preferences and persists the
// chosen pair for next time.
func resolveEndpoints(store *prefs.Store, origin, dest string) (string, string, error) {
	if origin == "" {
		saved, err := store.Origin()
		if err != nil {
			return "", "", err
		}
		origin = saved
	}
	if dest == "" {
		saved, err := store.Dest()
		if err != nil {
			return "", "", err
		}
		dest = saved
	}
	if dest == "" {
		saved, err := store.DefaultDest()
		if err != nil {
			return "", "", err
		}
		dest = saved
	}
	if origin == "" || dest == "" {
		return "", "", fmt.Errorf("origin and dest are required (pass -origin/-dest or save them once)")
	}

	if err := store.SetOrigin(origin); err != nil {
		return "", "", err
	}
	if err := store.SetDest(dest); err != nil {
		return "", "", err
	}
	return origin, dest, nil
}

func nearestOrigin(ctx context.Context, c *client.Client, coords string) (string, error) {
	lat, lon, err := parseCoords(coords)
	if err != nil {
		return "", err
	}
	list, err := c.Stations(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch stations: %w", err)
	}
	st, ok := client.Nearest(list, lat, lon)
	if !ok {
		return "", fmt.Errorf("no station with coordinates available")
	}
	fmt.Printf("Nearest station: %s (%s)\n", st.Name, st.ID)
	return st.ID, nil
}

func parseCoords(s string) (float64, float64, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid -near value %q; expected \"lat,lon\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in %q", s)
	}
	return lat, lon, nil
}

func printStations(ctx context.Context, c *client.Client) error {
	list, err := c.Stations(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch stations: %w", err)
	}
	for _, s := range list {
		fmt.Printf("%-8s %s (%s)\n", s.ID, s.Name, s.NameEn)
	}
	return nil
}

func stationNames(ctx context.Context, c *client.Client) (map[string]string, error) {
	list, err := c.Stations(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(list))
	for _, s := range list {
		names[s.ID] = s.Name
	}
	return names, nil
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func printSchedule(resp *client.ScheduleResponse, names map[string]string) {
	fmt.Printf("%s → %s on %s\n",
		displayName(names, resp.Origin.ID), displayName(names, resp.Destination.ID), resp.Date)

	for _, t := range resp.Trains {
		status := t.Status
		if t.Status == client.StatusDelayed {
			status = fmt.Sprintf("+%d min", t.Delay)
		}
		fmt.Printf("  %s  %s → %s  %s %s  [%s]\n",
			t.TrainNo, t.DepartureTime, t.ArrivalTime, t.TrainType, t.OriginStation, status)
	}
}
