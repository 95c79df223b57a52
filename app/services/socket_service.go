package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lonetown/app/models"
	"lonetown/app/utils"
)

// ChatService handles the realtime chat events of a connection
type ChatService struct {
	messages MessageStore
	states   *MatchStateService
	rooms    *Broadcaster
	now      func() time.Time
}

// NewChatService creates a new chat service instance
func NewChatService(messages MessageStore, states *MatchStateService, rooms *Broadcaster) *ChatService {
	return &ChatService{
		messages: messages,
		states:   states,
		rooms:    rooms,
		now:      time.Now,
	}
}

// JoinMatch subscribes conn to the match room. With a participant userId the
// current match state is returned so the client can restore its view.
func (c *ChatService) JoinMatch(ctx context.Context, conn Conn, payload models.JoinMatchPayload) (*models.MatchStateView, error) {
	if err := utils.ValidateStruct(payload); err != nil {
		return nil, err
	}

	var view *models.MatchStateView
	if payload.UserID != "" {
		v, err := c.states.View(ctx, payload.MatchID, payload.UserID)
		if err != nil {
			return nil, err
		}
		view = v
	}

	c.rooms.Join(payload.MatchID, payload.UserID, conn)

	logrus.WithFields(logrus.Fields{
		"socket_id": conn.ID(),
		"match_id":  payload.MatchID,
		"user_id":   payload.UserID,
	}).Debug("Joined match room")

	return view, nil
}

// SendMessage persists the message, then relays it to the other connections of the match
func (c *ChatService) SendMessage(ctx context.Context, conn Conn, payload models.SendMessagePayload) (*models.Message, error) {
	if err := utils.ValidateStruct(payload); err != nil {
		return nil, err
	}

	msg := payload.ToMessage(c.now())
	msg.ID = uuid.NewString()

	if err := c.states.CheckCanSend(ctx, msg.MatchID, msg.SenderID); err != nil {
		return nil, err
	}

	if err := c.messages.Append(ctx, msg); err != nil {
		logrus.WithError(err).WithField("match_id", msg.MatchID).Error("❌ Error saving message")
		return nil, err
	}

	c.rooms.Join(msg.MatchID, msg.SenderID, conn)
	c.rooms.EmitExcept(msg.MatchID, conn.ID(), models.EventReceiveMessage, msg)

	unlocked, err := c.states.RecordMessage(ctx, msg.MatchID)
	if err != nil {
		// the message is already stored and delivered
		logrus.WithError(err).WithField("match_id", msg.MatchID).Warn("Failed to update video unlock")
	} else if unlocked {
		c.rooms.Emit(msg.MatchID, models.EventVideoUnlocked, models.VideoUnlockedEvent{MatchID: msg.MatchID})
	}

	return &msg, nil
}

// UnpinMatch relays the unpin to the other connections of the match and
// pushes the refreshed state to every participant in the room.
func (c *ChatService) UnpinMatch(ctx context.Context, conn Conn, payload models.UnpinMatchPayload) error {
	if err := utils.ValidateStruct(payload); err != nil {
		return err
	}

	var state *models.MatchState
	if payload.UserID != "" {
		changed, st, err := c.states.Unpin(ctx, payload.MatchID, payload.UserID)
		if err != nil {
			return err
		}
		if !changed {
			c.rooms.Join(payload.MatchID, payload.UserID, conn)
			return nil
		}
		state = st
	}

	c.rooms.Join(payload.MatchID, payload.UserID, conn)

	c.rooms.EmitExcept(payload.MatchID, conn.ID(), models.EventPartnerUnpinned, models.PartnerUnpinnedEvent{MatchID: payload.MatchID})

	if state != nil {
		c.pushState(ctx, state)
	}
	return nil
}

// Connect registers a new connection so it receives relays before joining a room
func (c *ChatService) Connect(conn Conn) {
	c.rooms.Connect(conn)
}

// Disconnect drops conn from the lobby and all rooms
func (c *ChatService) Disconnect(conn Conn) {
	rooms := c.rooms.Rooms(conn.ID())
	c.rooms.Disconnect(conn.ID())

	logrus.WithFields(logrus.Fields{
		"socket_id": conn.ID(),
		"rooms":     rooms,
	}).Debug("Left match rooms")
}

func (c *ChatService) pushState(ctx context.Context, state *models.MatchState) {
	now := c.now()
	recent, err := c.messages.CountSince(ctx, state.MatchID, now.Add(-models.VideoUnlockWindow))
	if err != nil {
		logrus.WithError(err).WithField("match_id", state.MatchID).Warn("Failed to count recent messages")
	}

	for _, m := range c.rooms.Members(state.MatchID) {
		if state.Participant(m.UserID) == nil {
			continue
		}
		m.Conn.Emit(models.EventMatchState, state.View(m.UserID, recent, now))
	}
}

// ErrorResponse maps a chat error onto the socket error payload
func ErrorResponse(err error, conn Conn, event string, now time.Time) models.ConnectionError {
	resp := models.ConnectionError{
		Status:    "error",
		Message:   err.Error(),
		Timestamp: now.UTC().Format(time.RFC3339),
		SocketID:  conn.ID(),
		Event:     event,
	}

	switch {
	case errors.Is(err, models.ErrFrozen):
		resp.ErrorCode = models.ErrorCodeFrozen
		resp.ErrorType = models.ErrorTypeState
	case errors.Is(err, models.ErrValidation):
		resp.ErrorCode = models.ErrorCodeInvalidValue
		resp.ErrorType = models.ErrorTypeValidation
	case errors.Is(err, models.ErrNotFound):
		resp.ErrorCode = models.ErrorCodeInvalidValue
		resp.ErrorType = models.ErrorTypeValidation
	default:
		resp.ErrorCode = models.ErrorCodeSystemError
		resp.ErrorType = models.ErrorTypeSystem
		resp.Message = fmt.Sprintf("Failed to process %s", event)
	}
	return resp
}
