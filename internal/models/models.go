package models

// DateLayout is the calendar date format used for every date field
const DateLayout = "2006-01-02"

// Book represents a book in a user's library
type Book struct {
	UUID       string `json:"uuid"`
	Title      string `json:"title"`
	Authors    string `json:"authors,omitempty"`
	ISBN10     string `json:"isbn10,omitempty"`
	ISBN13     string `json:"isbn13,omitempty"`
	PagesTotal int    `json:"pagesTotal"`
}

// ReadingSession is a single attempt to finish one book
type ReadingSession struct {
	UUID                string               `json:"uuid"`
	BookUUID            string               `json:"bookUuid"`
	Deadline            string               `json:"deadline,omitempty"`
	DateReadingSessions []DateReadingSession `json:"dateReadingSessions"`
}

// DateReadingSession records the page reached on a calendar date
type DateReadingSession struct {
	Date         string `json:"date"`
	LastReadPage int    `json:"lastReadPage"`
	Bookmark     string `json:"bookmark,omitempty"`
}

// ReadingSessionProgress is computed on every query and never stored.
// The estimate fields are nil when the pace does not allow a projection.
type ReadingSessionProgress struct {
	BookUUID              string  `json:"bookUuid"`
	LastReadPage          int     `json:"lastReadPage"`
	PagesTotal            int     `json:"pagesTotal"`
	ReadPercentage        int     `json:"readPercentage"`
	AveragePagesPerDay    float64 `json:"averagePagesPerDay"`
	EstimatedReadDaysLeft *int    `json:"estimatedReadDaysLeft"`
	EstimatedDaysLeft     *int    `json:"estimatedDaysLeft"`
	EstimatedFinishDate   *string `json:"estimatedFinishDate"`
	Deadline              string  `json:"deadline,omitempty"`
}
