package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ErrorKind classifies every way a generation call can fail.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindBackendRejected
	KindMalformedResponse
	KindUnreachable
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindBackendRejected:
		return "backend_rejected"
	case KindMalformedResponse:
		return "malformed_response"
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	default:
		return "unexpected"
	}
}

// Title is the short heading shown above the message.
func (k ErrorKind) Title() string {
	switch k {
	case KindBackendRejected:
		return "API Error"
	case KindMalformedResponse:
		return "Unexpected API Response"
	case KindUnreachable:
		return "Connection Error"
	case KindTimeout:
		return "Timeout"
	default:
		return "Unexpected Error"
	}
}

const (
	maxBodyExcerpt = 500

	msgUnreachable  = "Backend server is unreachable."
	msgTimeout      = "The backend did not respond in time. Try again, or try a different topic."
	msgNoVideoURL   = "No video URL returned by the server."
	msgEmptyAudio   = "No audio returned by the server."
	msgUnknownError = "Unknown error"
)

// Error is a classified generation failure. Status is the HTTP status code,
// or 0 when no response was received.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind.Title(), e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Title(), e.Message)
}

// AsError returns err as a classified *Error. Errors that were not produced by
// this package become KindUnexpected with their text as message.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return &Error{Kind: KindUnexpected, Message: err.Error()}
}

// detail is the decoded shape of a failure body's "detail" field: either a
// plain string or a list of validation items each carrying "msg".
type detail struct {
	text  string
	items []string
	list  bool
}

func (d detail) message() string {
	if d.list {
		if len(d.items) == 0 {
			return msgUnknownError
		}
		return strings.Join(d.items, ", ")
	}
	return d.text
}

// parseDetail decodes a failure body. ok is false when the body is not the
// expected JSON object or detail has an unsupported shape.
func parseDetail(body []byte) (detail, bool) {
	if !gjson.ValidBytes(body) {
		return detail{}, false
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return detail{}, false
	}
	d := root.Get("detail")
	switch {
	case !d.Exists():
		return detail{text: msgUnknownError}, true
	case d.Type == gjson.String:
		return detail{text: d.String()}, true
	case d.IsArray():
		out := detail{list: true}
		ok := true
		d.ForEach(func(_, item gjson.Result) bool {
			msg := item.Get("msg")
			if !item.IsObject() || msg.Type != gjson.String {
				ok = false
				return false
			}
			out.items = append(out.items, msg.String())
			return true
		})
		return out, ok
	default:
		return detail{}, false
	}
}

// classifyStatus turns a non-2xx response into an Error.
func classifyStatus(status int, body []byte) *Error {
	if d, ok := parseDetail(body); ok {
		return &Error{Kind: KindBackendRejected, Message: d.message(), Status: status}
	}
	return &Error{Kind: KindMalformedResponse, Message: excerpt(body), Status: status}
}

// classifyTransport turns a failed round trip into an Error. ctx is the
// per-call context carrying the deadline.
func classifyTransport(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: msgTimeout}
	}
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnexpected, Message: err.Error()}
	}
	if isConnectFailure(err) {
		return &Error{Kind: KindUnreachable, Message: msgUnreachable}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Message: msgTimeout}
	}
	return &Error{Kind: KindUnexpected, Message: err.Error()}
}

func isConnectFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// excerpt keeps the first maxBodyExcerpt runes of body and marks the cut with
// a trailing ellipsis, so a truncated excerpt is one rune longer.
func excerpt(body []byte) string {
	s := strings.ToValidUTF8(string(body), "�")
	if utf8.RuneCountInString(s) <= maxBodyExcerpt {
		return s
	}
	r := []rune(s)
	return string(r[:maxBodyExcerpt]) + "…"
}
