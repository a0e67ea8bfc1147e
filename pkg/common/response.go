package common

// Response is an HTTP response built by a handler and adjusted by middlewares on the way out.
type Response struct {
	Status  StatusCode
	Version Version
	Header  map[string]string
	Body    []byte
}

// NewResponse creates an empty response with the given status.
func NewResponse(status StatusCode) *Response {
	return &Response{
		Status:  status,
		Version: HTTP11,
		Header:  make(map[string]string),
	}
}

// OK returns an empty 200 response.
func OK() *Response {
	return NewResponse(StatusOK)
}

// NoContent returns a 204 response.
func NoContent() *Response {
	return NewResponse(StatusNoContent)
}

// BadRequest returns an empty 400 response.
func BadRequest() *Response {
	return NewResponse(StatusBadRequest)
}

// NotFound returns a 404 response with body "Not Found".
func NotFound() *Response {
	return NewResponse(StatusNotFound).SetBody([]byte("Not Found"))
}

// InternalServerError returns an empty 500 response.
func InternalServerError() *Response {
	return NewResponse(StatusInternalServerError)
}

// Text returns a response with a plain-text body.
func Text(status StatusCode, body string) *Response {
	return NewResponse(status).
		SetHeader("Content-Type", "text/plain; charset=utf-8").
		SetBody([]byte(body))
}

// SetHeader sets a header and returns the response for chaining.
func (r *Response) SetHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = make(map[string]string)
	}
	r.Header[key] = value
	return r
}

// GetHeader returns a header value.
func (r *Response) GetHeader(key string) (string, bool) {
	v, ok := r.Header[key]
	return v, ok
}

// SetBody replaces the body and returns the response for chaining.
func (r *Response) SetBody(body []byte) *Response {
	r.Body = body
	return r
}

// Clone returns a deep copy of r.
func (r *Response) Clone() *Response {
	r2 := &Response{
		Status:  r.Status,
		Version: r.Version,
		Header:  cloneMap(r.Header),
	}
	if r.Body != nil {
		r2.Body = append([]byte(nil), r.Body...)
	}
	return r2
}
