package ws

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/sink"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Config carries the transport knobs: deadlines for the ping/pong
// keepalive, the inbound frame size limit and the per-connection
// event buffer.
type Config struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SinkBufferSize int
	SendBufferSize int
}

// Handler owns the websocket endpoint: one read loop and one write
// pump per connection, a typed dispatch per signal name, and session
// cleanup on transport-level disconnect.
type Handler struct {
	log         *slog.Logger
	service     contract.IChatService
	cfg         Config
	connections atomic.Int64
}

func NewHandler(log *slog.Logger, service contract.IChatService, cfg Config) *Handler {
	return &Handler{log: log, service: service, cfg: cfg}
}

// Connections reports how many sockets are currently open, bound or
// not. Feeds the status surface.
func (h *Handler) Connections() int64 {
	return h.connections.Load()
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	conn     *websocket.Conn
	sink     *sink.ConnectionSink
	out      chan outbound
	done     chan struct{}
	identity *auth.Identity
}

// Handle serves one connection until it closes. Blocks, as required by
// the websocket middleware.
func (h *Handler) Handle(conn *websocket.Conn) {
	h.connections.Add(1)
	defer h.connections.Add(-1)

	c := &client{
		conn: conn,
		sink: sink.NewConnectionSink(h.cfg.SinkBufferSize),
		out:  make(chan outbound, h.cfg.SendBufferSize),
		done: make(chan struct{}),
	}

	go h.writePump(c)

	h.readLoop(context.Background(), c)

	// Unbind only if this connection authenticated; the registry
	// ignores the call when a newer login already replaced the sink.
	if c.identity != nil {
		h.service.Disconnect(c.identity.UserID, c.sink)
	}
	close(c.done)
}

func (h *Handler) readLoop(ctx context.Context, c *client) {
	c.conn.SetReadLimit(h.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		var envelope Envelope
		if err := c.conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Websocket read ended", "error", err)
			}
			return
		}
		h.dispatch(ctx, c, envelope)
	}
}

func (h *Handler) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case e := <-c.sink.Events:
			name, data, ok := toFrame(e)
			if !ok {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := c.conn.WriteJSON(outbound{Event: name, Data: data}); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue pushes a direct reply to this connection. Replies are small
// and client-triggered; a full buffer means the peer stopped reading,
// so the frame is dropped.
func (c *client) enqueue(event string, data any) {
	select {
	case c.out <- outbound{Event: event, Data: data}:
	case <-c.done:
	default:
	}
}

func (c *client) fail(err error) {
	c.enqueue(EventError, ErrorFrame{Message: err.Error()})
}

// dispatch validates one inbound envelope and routes it to the
// service. Every failure is reported to this connection only; no
// signal can take the connection down.
func (h *Handler) dispatch(ctx context.Context, c *client, envelope Envelope) {
	switch envelope.Event {
	case SignalAuthenticate:
		var payload AuthenticatePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.fail(fmt.Errorf("malformed %s payload", envelope.Event))
			return
		}
		identity, err := h.service.Authenticate(ctx, payload.Token, c.sink)
		if err != nil {
			c.fail(err)
			return
		}
		c.identity = &identity
		c.enqueue(EventAuthenticated, AuthenticatedFrame{UserID: identity.UserID})

	case SignalJoinChat:
		payload, conversationID, ok := h.roomPayload(c, envelope)
		if !ok {
			return
		}
		if err := h.service.Join(ctx, payload.Token, conversationID); err != nil {
			c.fail(err)
		}

	case SignalSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.fail(fmt.Errorf("malformed %s payload", envelope.Event))
			return
		}
		if err := auth.ValidateSendMessage(toSendRequest(payload)); err != nil {
			c.fail(err)
			return
		}
		conversationID, err := uuid.Parse(payload.ConversationID)
		if err != nil {
			c.fail(fmt.Errorf("malformed conversation id"))
			return
		}
		cmd := domain.SendCommand{
			ConversationID: conversationID,
			Token:          payload.Token,
			Content:        payload.Content,
			Kind:           domain.Kind(payload.MessageType),
			Attachments:    fromAttachments(payload.Attachments),
			SubmittedAt:    time.Now().UTC(),
		}
		if _, err := h.service.Send(ctx, cmd); err != nil {
			c.fail(err)
		}

	case SignalTyping, SignalStopTyping:
		if c.identity == nil {
			c.fail(fmt.Errorf("authenticate first"))
			return
		}
		_, conversationID, ok := h.roomPayload(c, envelope)
		if !ok {
			return
		}
		active := envelope.Event == SignalTyping
		if err := h.service.Typing(ctx, c.identity.UserID, conversationID, active); err != nil {
			c.fail(err)
		}

	case SignalMarkRead:
		if c.identity == nil {
			c.fail(fmt.Errorf("authenticate first"))
			return
		}
		_, conversationID, ok := h.roomPayload(c, envelope)
		if !ok {
			return
		}
		if err := h.service.MarkRead(ctx, c.identity.UserID, conversationID); err != nil {
			c.fail(err)
		}

	default:
		c.fail(fmt.Errorf("unknown signal %q", envelope.Event))
	}
}

func (h *Handler) roomPayload(c *client, envelope Envelope) (RoomPayload, uuid.UUID, bool) {
	var payload RoomPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.fail(fmt.Errorf("malformed %s payload", envelope.Event))
		return RoomPayload{}, uuid.Nil, false
	}
	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		c.fail(fmt.Errorf("malformed conversation id"))
		return RoomPayload{}, uuid.Nil, false
	}
	return payload, conversationID, true
}

func toSendRequest(payload SendMessagePayload) auth.SendMessageRequest {
	attachments := make([]auth.AttachmentRequest, 0, len(payload.Attachments))
	for _, a := range payload.Attachments {
		attachments = append(attachments, auth.AttachmentRequest{URL: a.URL, Kind: a.Kind, Name: a.Name})
	}
	return auth.SendMessageRequest{
		ConversationID: payload.ConversationID,
		Token:          payload.Token,
		Content:        payload.Content,
		MessageType:    payload.MessageType,
		Attachments:    attachments,
	}
}
