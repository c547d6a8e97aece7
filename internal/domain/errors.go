package domain

import "errors"

// Error taxonomy for a single user fetch. None of these ever escape the
// workflow; they are rendered into TrackedUser.Error.
var (
	// ErrMissingInput means the username or a date was not set. No request is made.
	ErrMissingInput = errors.New("missing date or username")
	// ErrTransport covers connection failures, non-200 responses and unparseable bodies.
	ErrTransport = errors.New("transport error")
	// ErrUserNotFound covers GraphQL errors and a null user in the response.
	ErrUserNotFound = errors.New("user not found")
)

// Messages attached to TrackedUser.Error.
const (
	MsgMissingInput = "Missing date or username"
	MsgTransport    = "Network or API error."
	MsgNotFound     = "User not found or API error."
)

// ErrorMessage maps an error from the taxonomy to its user-facing message.
// Unknown errors are reported as transport failures.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingInput):
		return MsgMissingInput
	case errors.Is(err, ErrUserNotFound):
		return MsgNotFound
	default:
		return MsgTransport
	}
}
