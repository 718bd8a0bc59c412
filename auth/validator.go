package auth

import (
	"chat-relay/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SendMessageRequest is the shape a send_message payload must satisfy
// before it enters the pipeline. Content length is additionally bounded
// by the configured maximum, checked by the service.
type SendMessageRequest struct {
	ConversationID string              `validate:"required,uuid4"`
	Token          string              `validate:"required"`
	Content        string              `validate:"max=2000"`
	MessageType    string              `validate:"omitempty,oneof=text image file"`
	Attachments    []AttachmentRequest `validate:"dive"`
}

type AttachmentRequest struct {
	URL  string `validate:"required,url"`
	Kind string `validate:"omitempty,oneof=image file"`
	Name string `validate:"max=255"`
}

// ValidateSendMessage enforces the pipeline's Received-state contract:
// a conversation, a token, and either a non-empty body or at least one
// attachment.
func ValidateSendMessage(req SendMessageRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	if req.Content == "" && len(req.Attachments) == 0 {
		return fmt.Errorf("%w: empty content and no attachments", errors.ErrInvalidRequest)
	}
	return nil
}

type RoomRequest struct {
	ConversationID string `validate:"required,uuid4"`
}

func ValidateRoom(req RoomRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}
