package readingsession

import (
	"math"
	"sort"
	"time"

	"readinglog/internal/models"
)

// maxProjectionDays bounds a finish projection; slower paces are reported as undetermined
const maxProjectionDays = 100 * 365

// Reading is the page reached on a calendar date
type Reading struct {
	Date time.Time
	Page int
}

// AveragePagesPerDay computes the reading pace over elapsed calendar time.
//
// Readings must be sorted by date. The pace is the page gain between the first and the
// last reading divided by the number of days between them, so gaps without readings
// lower the pace instead of being skipped. A single reading counts its page as read
// in one day.
func AveragePagesPerDay(readings []Reading) float64 {
	if len(readings) == 0 {
		return 0
	}

	last := readings[len(readings)-1]
	if len(readings) == 1 {
		return float64(last.Page)
	}

	first := readings[0]
	days := daysBetween(first.Date, last.Date)
	if days < 1 {
		days = 1
	}
	return float64(last.Page-first.Page) / float64(days)
}

// Estimate projects when the session's book will be finished.
//
// When the book is already finished the projection is zero days from today. When the pace
// is zero or negative with pages left, or too slow to finish within maxProjectionDays, the
// projection is undetermined and the estimate fields stay nil. The deadline is reported as is and never shortens the projection.
func Estimate(book models.Book, session models.ReadingSession, today time.Time) (models.ReadingSessionProgress, error) {
	if len(session.DateReadingSessions) == 0 {
		return models.ReadingSessionProgress{}, ErrDateReadingSessionNotFound
	}

	readings, err := sortedReadings(session.DateReadingSessions)
	if err != nil {
		return models.ReadingSessionProgress{}, err
	}

	lastReadPage := readings[len(readings)-1].Page
	pace := AveragePagesPerDay(readings)

	progress := models.ReadingSessionProgress{
		BookUUID:           book.UUID,
		LastReadPage:       lastReadPage,
		PagesTotal:         book.PagesTotal,
		ReadPercentage:     readPercentage(lastReadPage, book.PagesTotal),
		AveragePagesPerDay: pace,
		Deadline:           session.Deadline,
	}

	pagesLeft := book.PagesTotal - lastReadPage
	var readDaysLeft int
	switch {
	case pagesLeft <= 0:
		readDaysLeft = 0
	case pace <= 0:
		return progress, nil
	default:
		days := math.Ceil(float64(pagesLeft) / pace)
		if days > maxProjectionDays {
			return progress, nil
		}
		readDaysLeft = int(days)
	}

	daysLeft := readDaysLeft
	finishDate := civilDate(today).AddDate(0, 0, daysLeft).Format(models.DateLayout)
	progress.EstimatedReadDaysLeft = &readDaysLeft
	progress.EstimatedDaysLeft = &daysLeft
	progress.EstimatedFinishDate = &finishDate
	return progress, nil
}

func sortedReadings(entries []models.DateReadingSession) ([]Reading, error) {
	readings := make([]Reading, 0, len(entries))
	for _, entry := range entries {
		date, err := time.Parse(models.DateLayout, entry.Date)
		if err != nil {
			return nil, ErrDateReadingSessionInvalid
		}
		readings = append(readings, Reading{Date: date, Page: entry.LastReadPage})
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Date.Before(readings[j].Date)
	})
	return readings, nil
}

// readPercentage is floored and capped at 100
func readPercentage(lastReadPage, pagesTotal int) int {
	if pagesTotal <= 0 {
		return 0
	}
	percentage := math.Floor(float64(lastReadPage) * 100 / float64(pagesTotal))
	if percentage > 100 {
		return 100
	}
	if percentage < 0 {
		return 0
	}
	return int(percentage)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(civilDate(to).Sub(civilDate(from)).Hours() / 24))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
