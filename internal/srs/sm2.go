package srs

import (
	"math"
	"time"
)

const (
	// InitialEaseFactor is the ease factor of a new item.
	InitialEaseFactor = 2.5

	// MinEaseFactor is the SM-2 floor.
	MinEaseFactor = 1.3

	// PassingQuality is the lowest quality that counts as recalled.
	PassingQuality = 3

	StrugglingWrongCount = 2
	StrugglingEaseFactor = 2.0
	MasteredEaseFactor   = 2.5
	MasteredRepetitions  = 5

	day = 24 * time.Hour
)

// clampQuality keeps quality within 0-5.
func clampQuality(q int) int {
	return min(max(q, 0), 5)
}

// nextEaseFactor applies the SM-2 ease update.
func nextEaseFactor(ef float64, quality int) float64 {
	d := float64(5 - quality)
	return math.Max(MinEaseFactor, ef+(0.1-d*(0.08+d*0.02)))
}

// apply updates it in place for a review graded quality at now.
func apply(it *ReviewItem, quality int, now time.Time) {
	quality = clampQuality(quality)

	if quality < PassingQuality {
		it.Repetitions = 0
		it.Interval = 1
		it.WrongCount++
	} else {
		switch it.Repetitions {
		case 0:
			it.Interval = 1
		case 1:
			it.Interval = 6
		default:
			it.Interval = int(math.Round(float64(it.Interval) * it.EaseFactor))
		}
		it.Repetitions++
	}

	it.EaseFactor = nextEaseFactor(it.EaseFactor, quality)
	it.LastReviewScore = quality
	it.LastReviewed = now
	it.NextReview = now.Add(time.Duration(it.Interval) * day)
}
