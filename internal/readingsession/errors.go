package readingsession

// Reason identifies why a reading-session operation was rejected
type Reason string

const (
	ReasonReadingSessionNotFound          Reason = "READING_SESSION_NOT_FOUND"
	ReasonReadingSessionAlreadyExists     Reason = "READING_SESSION_ALREADY_EXISTS"
	ReasonReadingSessionInvalid           Reason = "READING_SESSION_INVALID"
	ReasonDateReadingSessionNotFound      Reason = "DATE_READING_SESSION_NOT_FOUND"
	ReasonDateReadingSessionAlreadyExists Reason = "DATE_READING_SESSION_ALREADY_EXISTS"
	ReasonDateReadingSessionInvalid       Reason = "DATE_READING_SESSION_INVALID"
)

// Error is a client-correctable reading-session failure.
// The package level values are sentinels to be matched with errors.Is.
type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return string(e.Reason)
}

var (
	ErrReadingSessionNotFound          = &Error{Reason: ReasonReadingSessionNotFound}
	ErrReadingSessionAlreadyExists     = &Error{Reason: ReasonReadingSessionAlreadyExists}
	ErrReadingSessionInvalid           = &Error{Reason: ReasonReadingSessionInvalid}
	ErrDateReadingSessionNotFound      = &Error{Reason: ReasonDateReadingSessionNotFound}
	ErrDateReadingSessionAlreadyExists = &Error{Reason: ReasonDateReadingSessionAlreadyExists}
	ErrDateReadingSessionInvalid       = &Error{Reason: ReasonDateReadingSessionInvalid}
)
