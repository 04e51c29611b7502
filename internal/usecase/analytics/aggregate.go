// Package analytics summarizes a user's connections. Compute is pure and
// recomputes everything from the full list on every call.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
)

const (
	topLocationsLimit = 5
	trendMonths       = 6
	timeOfDayBuckets  = 8
	bucketHours       = 24 / timeOfDayBuckets
	week              = 7 * 24 * time.Hour
)

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Label string `json:"label"`
	Count int    `json:"count"`
}

type MapPoint struct {
	ConnectionID string  `json:"connection_id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type Summary struct {
	TotalConnections          int                   `json:"total_connections"`
	ThisMonth                 int                   `json:"this_month"`
	ThisWeek                  int                   `json:"this_week"`
	ConnectionMethodStats     map[string]int        `json:"connection_method_stats"`
	TopLocations              []LocationCount       `json:"top_locations"`
	MonthlyTrend              []MonthCount          `json:"monthly_trend"`
	TimeOfDay                 [timeOfDayBuckets]int `json:"time_of_day"`
	MostActiveDay             string                `json:"most_active_day"`
	AverageConnectionsPerWeek float64               `json:"average_connections_per_week"`
	ConnectionsWithLocation   int                   `json:"connections_with_location"`
	MapPoints                 []MapPoint            `json:"map_points"`
}

// mondayFirst orders weekdays for tie-breaking in MostActiveDay.
var mondayFirst = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// At returns the moment the connection was made. Timestamp is preferred;
// CreatedAt covers rows written without one.
func At(c *domain.Connection) time.Time {
	if c.Timestamp > 0 {
		return time.UnixMilli(c.Timestamp)
	}
	return c.CreatedAt
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -offset)
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Compute builds the summary for conns as seen at now in loc. Period
// boundaries and time-of-day buckets use loc's wall clock; nil loc means
// UTC.
func Compute(conns []*domain.Connection, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	monthStart := startOfMonth(now)
	weekStart := startOfWeek(now)

	s := Summary{
		ConnectionMethodStats: make(map[string]int),
		TopLocations:          []LocationCount{},
		MapPoints:             []MapPoint{},
	}

	trendIndex := make(map[string]int, trendMonths)
	s.MonthlyTrend = make([]MonthCount, trendMonths)
	for i := 0; i < trendMonths; i++ {
		m := monthStart.AddDate(0, i-(trendMonths-1), 0)
		s.MonthlyTrend[i] = MonthCount{Month: monthKey(m), Label: m.Format("Jan")}
		trendIndex[monthKey(m)] = i
	}

	var (
		locationCounts = make(map[string]int)
		locationOrder  []string
		dayCounts      [7]int
		earliest       time.Time
		latest         time.Time
	)

	for _, c := range conns {
		if c == nil {
			continue
		}
		at := At(c).In(loc)
		s.TotalConnections++

		if !at.Before(monthStart) {
			s.ThisMonth++
		}
		if !at.Before(weekStart) {
			s.ThisWeek++
		}

		if c.ConnectionMethod != "" {
			s.ConnectionMethodStats[string(c.ConnectionMethod)]++
		}

		if place := strings.TrimSpace(c.EventLocation); place != "" {
			if _, seen := locationCounts[place]; !seen {
				locationOrder = append(locationOrder, place)
			}
			locationCounts[place]++
		}

		if i, ok := trendIndex[monthKey(at)]; ok {
			s.MonthlyTrend[i].Count++
		}

		s.TimeOfDay[at.Hour()/bucketHours]++
		dayCounts[at.Weekday()]++

		if earliest.IsZero() || at.Before(earliest) {
			earliest = at
		}
		if latest.IsZero() || at.After(latest) {
			latest = at
		}

		if c.HasLocation() {
			s.ConnectionsWithLocation++
			s.MapPoints = append(s.MapPoints, MapPoint{
				ConnectionID: c.ID,
				Name:         c.ConnectedUserName,
				Latitude:     c.Latitude,
				Longitude:    c.Longitude,
			})
		}
	}

	s.TopLocations = topLocations(locationCounts, locationOrder)

	if s.TotalConnections == 0 {
		return s
	}

	best := -1
	for _, d := range mondayFirst {
		if dayCounts[d] > best {
			best = dayCounts[d]
			s.MostActiveDay = d.String()
		}
	}

	weeks := int(latest.Sub(earliest) / week)
	if weeks < 1 {
		weeks = 1
	}
	s.AverageConnectionsPerWeek = float64(s.TotalConnections) / float64(weeks)
	return s
}

// topLocations ranks by count; equal counts keep first-seen order.
func topLocations(counts map[string]int, order []string) []LocationCount {
	out := make([]LocationCount, 0, len(order))
	for _, place := range order {
		out = append(out, LocationCount{Location: place, Count: counts[place]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topLocationsLimit {
		out = out[:topLocationsLimit]
	}
	return out
}
