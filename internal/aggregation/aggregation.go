// Package aggregation computes anonymized population statistics over the full
// submission set. Every function here is pure.
package aggregation

import (
	"math"
	"sort"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type MetricSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Range  Range   `json:"range"`
}

type AverageMetrics struct {
	HeartRate  MetricSummary `json:"heartRate"`
	SleepHours MetricSummary `json:"sleepHours"`
	Steps      MetricSummary `json:"steps"`
}

type DataQuality struct {
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
}

// TemporalDistribution counts submissions per hour of day (0-23), day of week
// (0-6, Sunday first) and week of year. Buckets are evaluated in UTC.
type TemporalDistribution struct {
	Hourly map[int]int `json:"hourly"`
	Daily  map[int]int `json:"daily"`
	Weekly map[int]int `json:"weekly"`
}

type Snapshot struct {
	TotalSubmissions     int64                `json:"totalSubmissions"`
	UniqueContributors   int64                `json:"uniqueContributors"`
	AverageMetrics       *AverageMetrics      `json:"averageMetrics"`
	DataQuality          DataQuality          `json:"dataQuality"`
	TemporalDistribution TemporalDistribution `json:"temporalDistribution"`
	LastUpdated          time.Time            `json:"lastUpdated"`
}

// Compute derives the full snapshot. An empty set yields zero counts, a nil
// AverageMetrics and 100% quality scores.
func Compute(records []domain.HealthSubmission, lastUpdated time.Time) Snapshot {
	snap := Snapshot{
		TotalSubmissions:     int64(len(records)),
		UniqueContributors:   Contributors(records),
		DataQuality:          Quality(records),
		TemporalDistribution: Temporal(records),
		LastUpdated:          lastUpdated,
	}
	if len(records) == 0 {
		return snap
	}

	var hr, sleep, steps []float64
	for _, r := range records {
		if r.HeartRate != 0 {
			hr = append(hr, r.HeartRate)
		}
		if r.SleepHours != 0 {
			sleep = append(sleep, r.SleepHours)
		}
		if r.Steps != 0 {
			steps = append(steps, float64(r.Steps))
		}
	}
	snap.AverageMetrics = &AverageMetrics{
		HeartRate:  Summarize(hr),
		SleepHours: Summarize(sleep),
		Steps:      Summarize(steps),
	}
	return snap
}

// Stats derives the PlatformStats counters for records.
func Stats(records []domain.HealthSubmission, lastUpdated time.Time) domain.PlatformStats {
	return domain.PlatformStats{
		ID:                 domain.PlatformStatsID,
		TotalSubmissions:   int64(len(records)),
		UniqueContributors: Contributors(records),
		LastUpdated:        lastUpdated,
	}
}

// Contributors counts distinct user addresses exactly as stored.
func Contributors(records []domain.HealthSubmission) int64 {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.UserAddress] = struct{}{}
	}
	return int64(len(seen))
}

// Summarize returns mean, median and range of values; empty input is all zero.
func Summarize(values []float64) MetricSummary {
	if len(values) == 0 {
		return MetricSummary{}
	}
	return MetricSummary{
		Mean:   Mean(values),
		Median: Median(values),
		Range:  Range{Min: minOf(values), Max: maxOf(values)},
	}
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Quality reports the share of records with all metrics present and with all
// metrics in range, as percentages.
func Quality(records []domain.HealthSubmission) DataQuality {
	if len(records) == 0 {
		return DataQuality{Completeness: 100, Consistency: 100}
	}
	var complete, consistent int
	for _, r := range records {
		if r.HeartRate != 0 && r.SleepHours != 0 && r.Steps != 0 {
			complete++
		}
		if validation.InRange(r.HeartRate, r.SleepHours, r.Steps) {
			consistent++
		}
	}
	n := float64(len(records))
	return DataQuality{
		Completeness: float64(complete) / n * 100,
		Consistency:  float64(consistent) / n * 100,
	}
}

func Temporal(records []domain.HealthSubmission) TemporalDistribution {
	dist := TemporalDistribution{
		Hourly: map[int]int{},
		Daily:  map[int]int{},
		Weekly: map[int]int{},
	}
	for _, r := range records {
		t := time.UnixMilli(r.Timestamp).UTC()
		dist.Hourly[t.Hour()]++
		dist.Daily[int(t.Weekday())]++
		dist.Weekly[WeekOfYear(t)]++
	}
	return dist
}

// WeekOfYear is ceil((daysSinceJan1 + jan1Weekday + 1) / 7), with
// daysSinceJan1 fractional.
func WeekOfYear(t time.Time) int {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := t.Sub(start).Hours() / 24
	return int(math.Ceil((days + float64(start.Weekday()) + 1) / 7))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// LeaderboardEntry ranks a contributor by submission count. The address is
// withheld.
type LeaderboardEntry struct {
	Rank          int   `json:"rank"`
	Contributions int   `json:"contributions"`
	Rewards       int64 `json:"rewards"`
}

// Leaderboard returns the top n contributors by submission count. Addresses
// are grouped case-insensitively and ties keep first-submission order.
func Leaderboard(records []domain.HealthSubmission, n int, rewardPerSubmission int64) []LeaderboardEntry {
	counts := map[string]int{}
	var order []string
	for _, r := range records {
		key := domain.WalletKey(r.UserAddress)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if n > 0 && len(order) > n {
		order = order[:n]
	}
	out := make([]LeaderboardEntry, 0, len(order))
	for i, key := range order {
		out = append(out, LeaderboardEntry{
			Rank:          i + 1,
			Contributions: counts[key],
			Rewards:       int64(counts[key]) * rewardPerSubmission,
		})
	}
	return out
}
