package config

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	socketio "github.com/doquangtan/socket.io/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"lonetown/app/models"
	"lonetown/app/services"
)

var (
	errMissingPayload = errors.New("no payload provided")
	errInvalidPayload = errors.New("invalid payload format")
)

// SocketIoHandler handles all Socket.IO related functionality
type SocketIoHandler struct {
	io   *socketio.Io
	chat *services.ChatService
}

// socketConn adapts a Socket.IO socket to the broadcaster connection
type socketConn struct {
	socket *socketio.Socket
}

func (s socketConn) ID() string { return s.socket.Id }

func (s socketConn) Emit(event string, payload interface{}) {
	s.socket.Emit(event, payload)
}

// NewSocketHandler creates a new Socket.IO handler instance
func NewSocketHandler(chat *services.ChatService) *SocketIoHandler {
	handler := &SocketIoHandler{
		io:   socketio.New(),
		chat: chat,
	}

	handler.setupSocketHandlers()
	return handler
}

// setupSocketHandlers configures all Socket.IO event handlers
func (h *SocketIoHandler) setupSocketHandlers() {
	h.io.OnConnection(func(socket *socketio.Socket) {
		conn := socketConn{socket: socket}
		h.chat.Connect(conn)
		logrus.WithField("socket_id", socket.Id).Info("✅ Socket connected")

		socket.On(models.EventJoinMatch, func(event *socketio.EventPayload) {
			var payload models.JoinMatchPayload
			if err := decodePayload(event, &payload); err != nil {
				h.emitDecodeError(conn, models.EventJoinMatch, "matchId", err)
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), StoreTimeout)
			defer cancel()

			view, err := h.chat.JoinMatch(ctx, conn, payload)
			if err != nil {
				h.emitError(conn, models.EventJoinMatch, err)
				return
			}
			if view != nil {
				socket.Emit(models.EventMatchState, view)
			}
		})

		socket.On(models.EventSendMessage, func(event *socketio.EventPayload) {
			var payload models.SendMessagePayload
			if err := decodePayload(event, &payload); err != nil {
				h.emitDecodeError(conn, models.EventSendMessage, "content", err)
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), StoreTimeout)
			defer cancel()

			if _, err := h.chat.SendMessage(ctx, conn, payload); err != nil {
				h.emitError(conn, models.EventSendMessage, err)
			}
		})

		socket.On(models.EventUnpinMatch, func(event *socketio.EventPayload) {
			var payload models.UnpinMatchPayload
			if err := decodePayload(event, &payload); err != nil {
				h.emitDecodeError(conn, models.EventUnpinMatch, "matchId", err)
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), StoreTimeout)
			defer cancel()

			if err := h.chat.UnpinMatch(ctx, conn, payload); err != nil {
				h.emitError(conn, models.EventUnpinMatch, err)
			}
		})

		socket.On("disconnect", func(event *socketio.EventPayload) {
			h.chat.Disconnect(conn)
			logrus.WithField("socket_id", socket.Id).Info("🔌 Socket disconnected")
		})
	})
}

// decodePayload converts the first event argument into dest
func decodePayload(event *socketio.EventPayload, dest interface{}) error {
	if len(event.Data) == 0 || event.Data[0] == nil {
		return errMissingPayload
	}
	return decodeArg(event.Data[0], dest)
}

func decodeArg(arg interface{}, dest interface{}) error {
	if _, ok := arg.(map[string]interface{}); !ok {
		return errInvalidPayload
	}
	raw, err := json.Marshal(arg)
	if err != nil {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errInvalidPayload
	}
	return nil
}

func (h *SocketIoHandler) emitDecodeError(conn socketConn, event, field string, err error) {
	resp := models.ConnectionError{
		Status:    "error",
		ErrorCode: models.ErrorCodeInvalidFormat,
		ErrorType: models.ErrorTypeFormat,
		Field:     field,
		Message:   "Invalid " + event + " payload",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		SocketID:  conn.ID(),
		Event:     event,
	}
	if errors.Is(err, errMissingPayload) {
		resp.ErrorCode = models.ErrorCodeMissingField
		resp.ErrorType = models.ErrorTypeField
		resp.Message = "No " + event + " payload provided"
	}
	conn.Emit(models.EventChatError, resp)
}

func (h *SocketIoHandler) emitError(conn socketConn, event string, err error) {
	resp := services.ErrorResponse(err, conn, event, time.Now())
	if resp.ErrorCode == models.ErrorCodeSystemError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"socket_id": conn.ID(),
			"event":     event,
		}).Error("❌ Socket event failed")
	}
	conn.Emit(models.EventChatError, resp)
}

// SetupSocketRoutes configures Socket.IO routes for the Fiber app
func (h *SocketIoHandler) SetupSocketRoutes(app *fiber.App) {
	app.Use("/", h.io.Middleware)
	app.Route("/socket.io", h.io.FiberRoute)
}
