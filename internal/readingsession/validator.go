package readingsession

import (
	"time"

	"readinglog/internal/models"
)

// Validate checks a dated entry before it is inserted or used as an update.
// The date must be a calendar date in YYYY-MM-DD form and the page must be at least 1.
func Validate(entry models.DateReadingSession) error {
	if entry.Date == "" {
		return ErrDateReadingSessionInvalid
	}
	if _, err := time.Parse(models.DateLayout, entry.Date); err != nil {
		return ErrDateReadingSessionInvalid
	}
	if entry.LastReadPage <= 0 {
		return ErrDateReadingSessionInvalid
	}
	return nil
}
