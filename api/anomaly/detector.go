// Package anomaly detects abrupt successive-year price changes in the
// producer price series and writes timestamped run reports.
package anomaly

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultThresholdPercent is the absolute successive-year percent change at
// which an observation pair counts as anomalous.
const DefaultThresholdPercent = 50.0

// Observation is one price point, pre-sorted by (area, item, year).
type Observation struct {
	Area  string
	Item  string
	Year  int
	Price float64
}

// Anomaly is the first threshold-crossing pair of one (area, item) group.
type Anomaly struct {
	Area          string  `json:"area"`
	Item          string  `json:"item"`
	FromYear      int     `json:"from_year"`
	ToYear        int     `json:"to_year"`
	FromPrice     float64 `json:"from_price"`
	ToPrice       float64 `json:"to_price"`
	PercentChange float64 `json:"percent_change"`
	YearGap       int     `json:"year_gap"`
}

// Report is the persisted result of one detection run.
type Report struct {
	Timestamp        time.Time `json:"timestamp"`
	ThresholdPercent float64   `json:"threshold_percent"`
	TotalGroups      int       `json:"total_groups"`
	TotalAnomalies   int       `json:"total_anomalies"`
	Anomalies        []Anomaly `json:"anomalies"`
}

// Detector scans ordered observations for successive-year jumps.
type Detector struct {
	ThresholdPercent float64
	Clock            clockwork.Clock
}

func NewDetector(thresholdPercent float64) *Detector {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultThresholdPercent
	}
	return &Detector{ThresholdPercent: thresholdPercent, Clock: clockwork.NewRealClock()}
}

// Scan walks observations ordered by (area, item, year) and emits at most
// one anomaly per (area, item) group: the first successive pair whose
// absolute percent change meets the threshold. Later pairs in the same
// group are not inspected.
func (d *Detector) Scan(observations []Observation) *Report {
	report := &Report{
		Timestamp:        d.Clock.Now().UTC(),
		ThresholdPercent: d.ThresholdPercent,
		Anomalies:        []Anomaly{},
	}

	var (
		prev      *Observation
		groupDone bool
		groupKey  [2]string
		haveGroup bool
	)
	for i := range observations {
		obs := &observations[i]
		key := [2]string{obs.Area, obs.Item}
		if !haveGroup || key != groupKey {
			groupKey = key
			haveGroup = true
			groupDone = false
			prev = nil
			report.TotalGroups++
		}
		if groupDone {
			continue
		}
		if prev != nil && prev.Price != 0 {
			change := (obs.Price - prev.Price) / prev.Price * 100
			if math.Abs(change) >= d.ThresholdPercent {
				report.Anomalies = append(report.Anomalies, Anomaly{
					Area:          obs.Area,
					Item:          obs.Item,
					FromYear:      prev.Year,
					ToYear:        obs.Year,
					FromPrice:     prev.Price,
					ToPrice:       obs.Price,
					PercentChange: math.Round(change*10) / 10,
					YearGap:       obs.Year - prev.Year,
				})
				groupDone = true
				continue
			}
		}
		prev = obs
	}

	report.TotalAnomalies = len(report.Anomalies)
	return report
}
