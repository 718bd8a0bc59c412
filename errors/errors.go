package errors

import "fmt"

var (
	ErrInvalidRequest       = fmt.Errorf("invalid request")
	ErrMissingToken         = fmt.Errorf("missing token")
	ErrInvalidToken         = fmt.Errorf("invalid token")
	ErrNotMember            = fmt.Errorf("not a member of this conversation")
	ErrNotJoined            = fmt.Errorf("not joined to this conversation")
	ErrSessionNotBound      = fmt.Errorf("no active session")
	ErrConversationNotFound = fmt.Errorf("conversation not found")
	ErrStoreUnavailable     = fmt.Errorf("store unavailable")
	ErrWorkerPanic          = fmt.Errorf("worker panic")
)
