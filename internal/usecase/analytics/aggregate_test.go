package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func conn(method domain.ConnectionMethod, at time.Time) *domain.Connection {
	return &domain.Connection{ConnectionMethod: method, Timestamp: at.UnixMilli()}
}

func TestCompute_MethodStats(t *testing.T) {
	conns := []*domain.Connection{
		conn(domain.MethodNFC, now.Add(-3*time.Hour)),
		conn(domain.MethodQR, now.Add(-2*time.Hour)),
		conn(domain.MethodNFC, now.Add(-1*time.Hour)),
	}

	s := Compute(conns, now, time.UTC)
	assert.Equal(t, 3, s.TotalConnections)
	assert.Equal(t, map[string]int{"NFC": 2, "QR": 1}, s.ConnectionMethodStats)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, now, time.UTC)

	assert.Equal(t, 0, s.TotalConnections)
	assert.Equal(t, 0.0, s.AverageConnectionsPerWeek)
	assert.Empty(t, s.ConnectionMethodStats)
	assert.Empty(t, s.TopLocations)
	assert.Empty(t, s.MapPoints)
	assert.Equal(t, "", s.MostActiveDay)
	assert.Equal(t, [8]int{}, s.TimeOfDay)
	require.Len(t, s.MonthlyTrend, 6)
	for _, m := range s.MonthlyTrend {
		assert.Zero(t, m.Count)
	}
}

func TestCompute_FullSummary(t *testing.T) {
	c1 := conn(domain.MethodNFC, time.Date(2026, 10, 13, 9, 30, 0, 0, time.UTC))
	c1.ID = "c1"
	c1.ConnectedUserName = "Ann"
	c1.EventLocation = "Berlin"
	c1.Latitude, c1.Longitude = 52.5, 13.4
	c2 := conn(domain.MethodQR, time.Date(2026, 10, 2, 22, 15, 0, 0, time.UTC))
	c2.EventLocation = "Paris"
	c3 := conn(domain.MethodNFC, time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC))
	c3.EventLocation = " Berlin "
	c4 := conn(domain.MethodQR, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	s := Compute([]*domain.Connection{c1, c2, c3, c4}, now, time.UTC)

	assert.Equal(t, 4, s.TotalConnections)
	assert.Equal(t, 2, s.ThisMonth)
	assert.Equal(t, 1, s.ThisWeek)
	assert.Equal(t, map[string]int{"NFC": 2, "QR": 2}, s.ConnectionMethodStats)
	assert.Equal(t, []LocationCount{{"Berlin", 2}, {"Paris", 1}}, s.TopLocations)

	assert.Equal(t, []MonthCount{
		{Month: "2026-05", Label: "May", Count: 0},
		{Month: "2026-06", Label: "Jun", Count: 0},
		{Month: "2026-07", Label: "Jul", Count: 0},
		{Month: "2026-08", Label: "Aug", Count: 1},
		{Month: "2026-09", Label: "Sep", Count: 0},
		{Month: "2026-10", Label: "Oct", Count: 2},
	}, s.MonthlyTrend)

	assert.Equal(t, [8]int{0, 0, 0, 2, 1, 0, 0, 1}, s.TimeOfDay)
	// one each on Tue, Fri, Thu, Sun: the earliest in a Monday-first week wins
	assert.Equal(t, "Tuesday", s.MostActiveDay)
	assert.InDelta(t, 4.0/32.0, s.AverageConnectionsPerWeek, 1e-9)

	assert.Equal(t, 1, s.ConnectionsWithLocation)
	assert.Equal(t, []MapPoint{{ConnectionID: "c1", Name: "Ann", Latitude: 52.5, Longitude: 13.4}}, s.MapPoints)
}

func TestCompute_AverageFloorsToOneWeek(t *testing.T) {
	conns := []*domain.Connection{
		conn(domain.MethodQR, now.Add(-48*time.Hour)),
		conn(domain.MethodQR, now.Add(-24*time.Hour)),
		conn(domain.MethodQR, now),
	}
	s := Compute(conns, now, time.UTC)
	assert.Equal(t, 3.0, s.AverageConnectionsPerWeek)
}

func TestCompute_TopLocationsTieKeepsFirstSeen(t *testing.T) {
	var conns []*domain.Connection
	for _, place := range []string{"A", "B", "B", "A", "C", "D", "E", "F", "G", ""} {
		c := conn(domain.MethodQR, now)
		c.EventLocation = place
		conns = append(conns, c)
	}

	s := Compute(conns, now, time.UTC)
	assert.Equal(t, []LocationCount{{"A", 2}, {"B", 2}, {"C", 1}, {"D", 1}, {"E", 1}}, s.TopLocations)
}

func TestCompute_UsesLocalWallClock(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	c := conn(domain.MethodNFC, time.Date(2026, 10, 13, 23, 30, 0, 0, time.UTC))

	s := Compute([]*domain.Connection{c}, now, plus3)
	assert.Equal(t, [8]int{1, 0, 0, 0, 0, 0, 0, 0}, s.TimeOfDay)
	assert.Equal(t, "Wednesday", s.MostActiveDay)
}

func TestCompute_WeekStartsMonday(t *testing.T) {
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	sunday := monday.Add(-time.Minute)

	s := Compute([]*domain.Connection{
		conn(domain.MethodQR, monday),
		conn(domain.MethodQR, sunday),
	}, now, time.UTC)
	assert.Equal(t, 1, s.ThisWeek)
}

func TestCompute_FallsBackToCreatedAt(t *testing.T) {
	c := &domain.Connection{ConnectionMethod: domain.MethodQR, CreatedAt: now.Add(-time.Hour)}
	s := Compute([]*domain.Connection{c}, now, time.UTC)
	assert.Equal(t, 1, s.ThisWeek)
	assert.Equal(t, 1, s.MonthlyTrend[5].Count)
}

func BenchmarkCompute(b *testing.B) {
	conns := make([]*domain.Connection, 0, 1000)
	for i := 0; i < 1000; i++ {
		c := conn(domain.MethodNFC, now.Add(-time.Duration(i)*time.Hour))
		c.EventLocation = fmt.Sprintf("place-%d", i%20)
		conns = append(conns, c)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compute(conns, now, time.UTC)
	}
}
