package common

import "strconv"

// StatusCode is an HTTP status code with a fixed reason phrase.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusNoContent           StatusCode = 204
	StatusBadRequest          StatusCode = 400
	StatusUnauthorized        StatusCode = 401
	StatusForbidden           StatusCode = 403
	StatusNotFound            StatusCode = 404
	StatusMethodNotAllowed    StatusCode = 405
	StatusTooManyRequests     StatusCode = 429
	StatusInternalServerError StatusCode = 500
	StatusServiceUnavailable  StatusCode = 503
)

var reasons = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusNoContent:           "No Content",
	StatusBadRequest:          "Bad Request",
	StatusUnauthorized:        "Unauthorized",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusTooManyRequests:     "Too Many Requests",
	StatusInternalServerError: "Internal Server Error",
	StatusServiceUnavailable:  "Service Unavailable",
}

// Reason returns the reason phrase written on the status line.
// Codes without a known phrase get "Unknown".
func (s StatusCode) Reason() string {
	if r, ok := reasons[s]; ok {
		return r
	}
	return "Unknown"
}

// Code returns the numeric code.
func (s StatusCode) Code() int {
	return int(s)
}

// String returns "<code> <reason>".
func (s StatusCode) String() string {
	return strconv.Itoa(int(s)) + " " + s.Reason()
}
