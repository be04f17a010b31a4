package relationship

import (
	"math"
	"slices"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
)

// daysPerMonth converts a reminder cadence in months to an expected gap in
// days for frequency defaults and adherence scoring.
const daysPerMonth = 30

// Score component weights. Response rate carries the most weight, recency
// and schedule adherence split the rest.
const (
	responseWeight  = 40
	recencyWeight   = 30
	adherenceWeight = 30
)

// Derived holds the recomputed metrics for a contact. All three fields are
// written together or not at all.
type Derived struct {
	RelationshipScore    int
	ContactFrequencyDays int
	ContactTrend         domain.Trend
}

// Recompute derives score, average contact frequency and trend from a
// contact's full log history. It is a pure function: same logs, cadence and
// clock always produce the same result.
//
// The second return value is false when there are no logs, in which case the
// contact's existing derived values must be left alone.
func Recompute(logs []domain.ContactLog, reminderFrequencyMonths int, now time.Time) (Derived, bool) {
	if len(logs) == 0 {
		return Derived{}, false
	}

	sorted := make([]domain.ContactLog, len(logs))
	copy(sorted, logs)
	slices.SortFunc(sorted, func(a, b domain.ContactLog) int {
		return a.ContactDate.Compare(b.ContactDate)
	})

	gaps := dayGaps(sorted)

	return Derived{
		RelationshipScore:    score(sorted, gaps, reminderFrequencyMonths, now),
		ContactFrequencyDays: frequencyDays(gaps, reminderFrequencyMonths),
		ContactTrend:         trend(gaps),
	}, true
}

// dayGaps returns the day distance between each consecutive pair of logs,
// oldest first. len(gaps) == len(sorted) - 1.
func dayGaps(sorted []domain.ContactLog) []float64 {
	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].ContactDate.Sub(sorted[i-1].ContactDate).Hours()/24)
	}
	return gaps
}

// frequencyDays is the average days between interactions. A single log has
// no gaps to average, so it falls back to the configured cadence.
func frequencyDays(gaps []float64, reminderFrequencyMonths int) int {
	if len(gaps) == 0 {
		return reminderFrequencyMonths * daysPerMonth
	}
	return int(math.Round(mean(gaps)))
}

// trend compares the last two gaps against the mean of all gaps. Both below
// the mean means interactions are speeding up, both above means they are
// slowing down. Anything else, including fewer than three logs, is stable.
func trend(gaps []float64) domain.Trend {
	if len(gaps) < 2 {
		return domain.TrendStable
	}
	m := mean(gaps)
	last, prev := gaps[len(gaps)-1], gaps[len(gaps)-2]
	switch {
	case last < m && prev < m:
		return domain.TrendIncreasing
	case last > m && prev > m:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// score is a weighted sum of response rate, recency of last contact, and
// adherence to the configured reminder cadence, clamped to [0, 100].
func score(sorted []domain.ContactLog, gaps []float64, reminderFrequencyMonths int, now time.Time) int {
	responded := 0
	for _, l := range sorted {
		if l.GotResponse {
			responded++
		}
	}
	response := float64(responded) / float64(len(sorted)) * responseWeight

	daysSince := now.Sub(sorted[len(sorted)-1].ContactDate).Hours() / 24
	recency := math.Max(0, recencyWeight-math.Min(recencyWeight, daysSince))

	// Half credit on adherence until there are enough logs to measure an
	// actual frequency, so brand-new contacts aren't penalized.
	adherence := float64(adherenceWeight) / 2
	if len(gaps) > 0 {
		configured := float64(reminderFrequencyMonths * daysPerMonth)
		ratio := mean(gaps) / configured
		if ratio > 1 {
			adherence = adherenceWeight / ratio
		} else {
			adherence = adherenceWeight * ratio
		}
	}

	total := int(math.Round(response + recency + adherence))
	return min(max(total, 0), 100)
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
