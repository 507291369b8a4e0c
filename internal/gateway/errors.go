package gateway

import "strings"

// ErrorKind distinguishes transport failures from application-level
// GraphQL errors.
type ErrorKind int

const (
	// KindNetwork: the request never produced a usable GraphQL response.
	KindNetwork ErrorKind = iota
	// KindGraphQL: the server responded with an "errors" array.
	KindGraphQL
)

// Error is the structured failure surfaced to controllers. The gateway
// never retries; callers decide what to show the user.
type Error struct {
	Kind     ErrorKind
	Messages []string
	Err      error // underlying transport error, network kind only
}

func (e *Error) Error() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, "; ")
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "gateway error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

func graphqlError(messages []string) *Error {
	return &Error{Kind: KindGraphQL, Messages: messages}
}
