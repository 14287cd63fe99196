package apiconn

import (
	"errors"
	"fmt"
)

// ErrInvalidAddress is wrapped by configuration errors caused by a malformed URI.
var ErrInvalidAddress = errors.New("invalid address")

// Kind classifies a failure surfaced by a Connection.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindNetwork
	KindSerialization
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNetwork:
		return "network"
	case KindSerialization:
		return "serialization"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Error is returned by every Connection operation. The original cause is
// kept in Err and reachable through errors.Is / errors.As.
type Error struct {
	Kind Kind
	Op   string
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "apiconn: " + e.Op
	if e.URL != "" {
		msg += " " + e.URL
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

func configErr(op, url string, err error) error {
	return &Error{Kind: KindConfig, Op: op, URL: url, Err: err}
}

func networkErr(op, url string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, URL: url, Err: err}
}

func serializationErr(op, url string, err error) error {
	return &Error{Kind: KindSerialization, Op: op, URL: url, Err: err}
}

func statusErr(op, url string, status int, body []byte) error {
	return &Error{
		Kind: KindStatus,
		Op:   op,
		URL:  url,
		Err:  fmt.Errorf("unexpected status %d: %s", status, readBodySnippet(body)),
	}
}
