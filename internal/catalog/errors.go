package catalog

// Reason identifies why a book operation was rejected
type Reason string

const (
	ReasonBookNotFound      Reason = "BOOK_NOT_FOUND"
	ReasonBookAlreadyExists Reason = "BOOK_ALREADY_EXISTS"
	ReasonBookInvalid       Reason = "BOOK_INVALID"
)

// Error is a client-correctable book failure
type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return string(e.Reason)
}

var (
	ErrBookNotFound      = &Error{Reason: ReasonBookNotFound}
	ErrBookAlreadyExists = &Error{Reason: ReasonBookAlreadyExists}
	ErrBookInvalid       = &Error{Reason: ReasonBookInvalid}
)
