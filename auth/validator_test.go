package auth

import (
	"chat-relay/errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validSendRequest() SendMessageRequest {
	return SendMessageRequest{
		ConversationID: uuid.NewString(),
		Token:          "some-token",
		Content:        "hello",
		MessageType:    "text",
	}
}

func Test_ValidateSendMessage_Accepts_Text(t *testing.T) {
	req := require.New(t)
	req.NoError(ValidateSendMessage(validSendRequest()))
}

func Test_ValidateSendMessage_Accepts_Attachment_Only(t *testing.T) {
	req := require.New(t)

	request := validSendRequest()
	request.Content = ""
	request.Attachments = []AttachmentRequest{{URL: "https://cdn.example.com/pic.png", Kind: "image", Name: "pic.png"}}

	req.NoError(ValidateSendMessage(request))
}

func Test_ValidateSendMessage_Rejects_Empty_Body_And_Attachments(t *testing.T) {
	req := require.New(t)

	request := validSendRequest()
	request.Content = ""

	req.ErrorIs(ValidateSendMessage(request), errors.ErrInvalidRequest)
}

func Test_ValidateSendMessage_Rejects_Missing_Token(t *testing.T) {
	req := require.New(t)

	request := validSendRequest()
	request.Token = ""

	req.ErrorIs(ValidateSendMessage(request), errors.ErrInvalidRequest)
}

func Test_ValidateSendMessage_Rejects_Missing_Conversation(t *testing.T) {
	req := require.New(t)

	request := validSendRequest()
	request.ConversationID = ""

	req.ErrorIs(ValidateSendMessage(request), errors.ErrInvalidRequest)
}

func Test_ValidateSendMessage_Rejects_Oversized_Content(t *testing.T) {
	req := require.New(t)

	request := validSendRequest()
	request.Content = strings.Repeat("a", 2001)

	req.ErrorIs(ValidateSendMessage(request), errors.ErrInvalidRequest)
}

func Test_ValidateSendMessage_Rejects_Unknown_Kind(t *testing.T) {
	req := require.New(t)

	request := validSendRequest()
	request.MessageType = "voice"

	req.ErrorIs(ValidateSendMessage(request), errors.ErrInvalidRequest)
}
