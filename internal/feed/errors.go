package feed

import (
	"errors"
	"fmt"
)

// Kind distinguishes the three feed failure modes. None are retried; the
// caller abandons the current search condition and moves on.
type Kind string

const (
	// KindTransport covers network failures and non-2xx responses.
	KindTransport Kind = "transport"
	// KindApplication covers feed-reported errors (the error envelope).
	KindApplication Kind = "application"
	// KindMalformed covers unparsable payloads.
	KindMalformed Kind = "malformed"
)

// Error is a typed feed failure.
type Error struct {
	Kind Kind
	// Code and Msg carry the feed's result code/message for application errors.
	Code string
	Msg  string
	// Status is the HTTP status for transport errors (0 when the request
	// never completed).
	Status int

	err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindApplication:
		return fmt.Sprintf("feed: application error %s: %s", e.Code, e.Msg)
	case KindMalformed:
		if e.err != nil {
			return fmt.Sprintf("feed: malformed payload: %v", e.err)
		}
		if e.Msg != "" {
			return "feed: malformed payload: " + e.Msg
		}
		return "feed: malformed payload"
	default:
		if e.Status != 0 {
			return fmt.Sprintf("feed: transport error: status %d", e.Status)
		}
		return fmt.Sprintf("feed: transport error: %v", e.err)
	}
}

func (e *Error) Unwrap() error { return e.err }

// IsKind reports whether err is a feed error of the given kind.
func IsKind(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}
