package codec

import (
	"errors"
	"fmt"

	"github.com/Suhaibinator/SServer/pkg/common"
)

// ErrBadRequest is the single protocol error kind. Every ParseError matches it with errors.Is.
var ErrBadRequest = errors.New("bad request")

// ParseErrorKind says which step of request parsing failed.
type ParseErrorKind int

const (
	// MalformedEncoding means the bytes are not valid UTF-8.
	MalformedEncoding ParseErrorKind = iota + 1
	// MalformedRequestLine means the first line has fewer than three tokens.
	MalformedRequestLine
	// UnknownMethod means the method token is not recognized.
	UnknownMethod
	// MalformedHeader means a header line lacks the ": " delimiter.
	MalformedHeader
	// MalformedRequest means there is no line after the blank separator.
	MalformedRequest
)

var kindNames = map[ParseErrorKind]string{
	MalformedEncoding:    "malformed encoding",
	MalformedRequestLine: "malformed request line",
	UnknownMethod:        "unknown method",
	MalformedHeader:      "malformed header",
	MalformedRequest:     "malformed request",
}

// String returns a short description of the kind.
func (k ParseErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown parse error"
}

// ParseError describes why a request could not be parsed.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", ErrBadRequest, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %q", ErrBadRequest, e.Kind, e.Detail)
}

// Unwrap lets errors.Is(err, ErrBadRequest) succeed.
func (e *ParseError) Unwrap() error {
	return ErrBadRequest
}

// Response returns the fixed response for this error: 400 with an empty body.
func (e *ParseError) Response() *common.Response {
	return common.BadRequest()
}

func parseError(kind ParseErrorKind, detail string) error {
	return &ParseError{Kind: kind, Detail: detail}
}
