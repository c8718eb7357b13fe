package srs

import "time"

// ReviewItem is the SM-2 state for one question a learner got wrong.
type ReviewItem struct {
	ID              string    `json:"id"`
	Subject         string    `json:"subject"`
	Topic           string    `json:"topic"`
	Question        string    `json:"question"`
	CorrectAnswer   string    `json:"correctAnswer"`
	EaseFactor      float64   `json:"easeFactor"`
	Interval        int       `json:"interval"` // days
	NextReview      time.Time `json:"nextReview"`
	Repetitions     int       `json:"repetitions"`
	LastReviewScore int       `json:"lastReviewScore"`
	WrongCount      int       `json:"wrongCount"`
	CreatedAt       time.Time `json:"createdAt"`
	LastReviewed    time.Time `json:"lastReviewed,omitzero"`
}

// IsDue returns true if the item is due for review (at or past NextReview).
func (it *ReviewItem) IsDue(now time.Time) bool {
	return !now.Before(it.NextReview)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (it *ReviewItem) OverdueDays(now time.Time) float64 {
	if now.Before(it.NextReview) {
		return 0
	}
	return now.Sub(it.NextReview).Hours() / 24.0
}

// Urgency orders due items: most overdue and most missed first.
func (it *ReviewItem) Urgency(now time.Time) float64 {
	return it.OverdueDays(now) + float64(it.WrongCount)*2
}

// IsStruggling reports whether the learner keeps missing this item.
func (it *ReviewItem) IsStruggling() bool {
	return it.WrongCount >= StrugglingWrongCount || it.EaseFactor < StrugglingEaseFactor
}

// IsMastered reports whether the item has been recalled reliably.
func (it *ReviewItem) IsMastered() bool {
	return it.EaseFactor >= MasteredEaseFactor && it.Repetitions >= MasteredRepetitions
}

// Status describes an item for display.
type Status string

const (
	StatusStruggling Status = "struggling"
	StatusLearning   Status = "learning"
	StatusMastered   Status = "mastered"
)

// Status classifies the item. Struggling wins over mastered.
func (it *ReviewItem) Status() Status {
	switch {
	case it.IsStruggling():
		return StatusStruggling
	case it.IsMastered():
		return StatusMastered
	}
	return StatusLearning
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (it *ReviewItem) DaysUntilReview(now time.Time) int {
	if it.IsDue(now) {
		return 0
	}
	return int(it.NextReview.Sub(now).Hours()/24.0) + 1
}
