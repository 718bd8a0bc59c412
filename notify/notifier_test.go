package notify

import (
	"chat-relay/domain"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Push_Posts_Notification(t *testing.T) {
	req := require.New(t)

	var received domain.PushNotification
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("application/json", r.Header.Get("Content-Type"))
		req.NoError(json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notification := domain.PushNotification{
		RecipientID:    "bob",
		ConversationID: uuid.New(),
		SenderID:       "alice",
		Excerpt:        "hello",
	}

	notifier := NewHTTPNotifier(server.URL, server.Client())
	req.NoError(notifier.Push(context.Background(), notification))
	req.Equal(notification, received)
}

func Test_Push_Reports_Non_Success(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL, server.Client())
	err := notifier.Push(context.Background(), domain.PushNotification{RecipientID: "bob"})
	req.Error(err)
}

func Test_Push_Reports_Unreachable_Service(t *testing.T) {
	req := require.New(t)

	notifier := NewHTTPNotifier("http://127.0.0.1:1", nil)
	err := notifier.Push(context.Background(), domain.PushNotification{RecipientID: "bob"})
	req.Error(err)
}
