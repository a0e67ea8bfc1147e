// Package codec converts between raw bytes and structured requests and responses,
// and encodes typed values into request and response bodies.
package codec

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Suhaibinator/SServer/pkg/common"
)

const (
	// ServerName is written in the Server header of every response.
	ServerName = "SServer"

	// DateFormat is the RFC 2822 layout used for the Date header.
	DateFormat = "Mon, 2 Jan 2006 15:04:05 -0700"

	crlf            = "\r\n"
	headerDelimiter = ": "
)

// computed headers are always written by the encoder; user values for them are ignored
var computedHeaders = map[string]struct{}{
	"content-length": {},
	"server":         {},
	"date":           {},
}

// ParseRequest parses one complete request from buf. The request is expected to arrive whole:
// request line, headers, a blank line and exactly one body line (which may be empty).
// Every failure is a *ParseError wrapping ErrBadRequest.
func ParseRequest(buf []byte) (*common.Request, error) {
	if !utf8.Valid(buf) {
		return nil, parseError(MalformedEncoding, "")
	}

	lines := strings.Split(string(buf), crlf)

	parts := strings.Fields(lines[0])
	if len(parts) < 3 {
		return nil, parseError(MalformedRequestLine, lines[0])
	}

	method, ok := common.ParseMethod(parts[0])
	if !ok {
		return nil, parseError(UnknownMethod, parts[0])
	}

	req := common.NewRequest(method, parts[1])
	req.Version = common.Version(parts[2])

	i := 1
	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			break
		}
		key, value, found := strings.Cut(line, headerDelimiter)
		if !found {
			return nil, parseError(MalformedHeader, line)
		}
		req.Header[key] = value
	}

	// i is at the blank separator; the body is the single line after it
	if i+1 >= len(lines) {
		return nil, parseError(MalformedRequest, "")
	}
	req.Body = []byte(lines[i+1])

	return req, nil
}

// EncodeResponse serializes resp using the current time for the Date header.
func EncodeResponse(resp *common.Response) []byte {
	return EncodeResponseAt(resp, time.Now())
}

// EncodeResponseAt serializes resp with now as the Date header. User headers are written
// sorted by key, so two encodings of the same response differ only in the Date line.
func EncodeResponseAt(resp *common.Response, now time.Time) []byte {
	version := resp.Version
	if version == "" {
		version = common.HTTP11
	}

	var b bytes.Buffer
	b.Grow(128 + len(resp.Body))

	b.WriteString(version.String())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(resp.Status.Code()))
	b.WriteByte(' ')
	b.WriteString(resp.Status.Reason())
	b.WriteString(crlf)

	writeHeader(&b, "Content-Length", strconv.Itoa(len(resp.Body)))
	writeHeader(&b, "Server", ServerName)
	writeHeader(&b, "Date", now.UTC().Format(DateFormat))

	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		if _, skip := computedHeaders[strings.ToLower(k)]; skip {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeHeader(&b, k, resp.Header[k])
	}

	b.WriteString(crlf)
	b.Write(resp.Body)
	return b.Bytes()
}

// WriteResponse serializes resp and writes it to w in a single call.
func WriteResponse(w io.Writer, resp *common.Response) error {
	_, err := w.Write(EncodeResponse(resp))
	return err
}

func writeHeader(b *bytes.Buffer, key, value string) {
	b.WriteString(key)
	b.WriteString(headerDelimiter)
	b.WriteString(value)
	b.WriteString(crlf)
}
