package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	configs "github.com/ushan-Gimhan/SWAPSPOT-BE/configs"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/services"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/websocket"
)

var (
	chatService *services.ChatService
	chatHub     *websocket.Hub
)

// InitMessaging wires the chat handlers to their service and gateway.
func InitMessaging(service *services.ChatService, hub *websocket.Hub) {
	chatService = service
	chatHub = hub
}

type AccessChatRequest struct {
	CounterpartID string `json:"counterpart_id" validate:"required"`
	ItemID        string `json:"item_id"`
}

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	Body           string `json:"body" validate:"required"`
}

// AccessChat finds or creates the conversation with a counterpart,
// optionally scoped to a listing.
func AccessChat(c *fiber.Ctx) error {
	requesterID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req AccessChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "validation_error", "error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "validation_error", "error": err.Error()})
	}

	conversation, err := chatService.AccessConversation(c.UserContext(), requesterID, req.CounterpartID, req.ItemID)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(conversation)
}

// GetMyConversations lists the requester's conversations, newest activity first.
func GetMyConversations(c *fiber.Ctx) error {
	requesterID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	conversations, err := chatService.ListMyConversations(c.UserContext(), requesterID)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(conversations)
}

// SendMessage appends a message and relays it to live participants.
func SendMessage(c *fiber.Ctx) error {
	requesterID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "validation_error", "error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "validation_error", "error": err.Error()})
	}

	message, err := chatService.PostMessage(c.UserContext(), requesterID, req.ConversationID, req.Body)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(message)
}

// GetConversationMessages lists a conversation's messages oldest first.
func GetConversationMessages(c *fiber.Ctx) error {
	requesterID, err := requesterID(c)
	if err != nil {
		return unauthenticated(c)
	}

	messages, err := chatService.ListMessages(c.UserContext(), requesterID, c.Params("conversationId"))
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(messages)
}

func chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidParticipant):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "invalid_participant", "error": "Invalid target user"})
	case errors.Is(err, services.ErrParticipantNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"kind": "not_found", "error": "Target user not found"})
	case errors.Is(err, services.ErrInvalidConversationID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "validation_error", "error": "Invalid conversation ID"})
	case errors.Is(err, services.ErrEmptyMessageBody):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "validation_error", "error": "Message body cannot be empty"})
	case errors.Is(err, services.ErrConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"kind": "not_found", "error": "Conversation not found"})
	case errors.Is(err, services.ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"kind": "forbidden", "error": "You are not a participant of this conversation"})
	default:
		log.Printf("🔥 Chat error: %v | Path: %s", err, c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"kind": "internal", "error": "Something went wrong"})
	}
}

type wsClientEvent struct {
	Event          string `json:"event"`
	Token          string `json:"token"`
	ConversationID string `json:"conversation_id"`
}

// ServeWs runs one realtime connection: the first frame must identify the
// user with a JWT, after which the client may join conversation rooms it
// participates in. All memberships are released on disconnect.
func ServeWs(c *websocketcontrib.Conn) {
	var identify wsClientEvent
	if err := c.ReadJSON(&identify); err != nil || identify.Event != "identify" {
		log.Printf("WebSocket identify failed: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Expected an identify event"})
		c.Close()
		return
	}

	claims, err := parseToken(identify.Token)
	if err != nil {
		log.Printf("WebSocket identify failed: invalid token: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	rawUserID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		log.Printf("WebSocket identify failed: invalid user_id %v: %v", claims["user_id"], err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: userID, Conn: c}
	chatHub.Join(client, userID.String())
	defer func() {
		chatHub.RemoveClient(client)
		c.Close()
	}()

	if err := client.Send(websocket.Event{Event: websocket.EventIdentified}); err != nil {
		log.Printf("WebSocket identify ack failed for %s: %v", userID, err)
		return
	}
	log.Printf("WebSocket client identified: %s", userID)

	for {
		var event wsClientEvent
		if err := c.ReadJSON(&event); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			return
		}

		switch event.Event {
		case "identify":
			// re-affirming identity keeps existing conversation rooms
			chatHub.Join(client, userID.String())
			_ = client.Send(websocket.Event{Event: websocket.EventIdentified})
		case "join_conversation":
			convID, err := uuid.Parse(event.ConversationID)
			if err != nil {
				_ = c.WriteJSON(fiber.Map{"error": "Invalid conversation ID"})
				continue
			}
			ok, err := chatService.IsParticipant(context.Background(), userID, convID)
			if err != nil {
				log.Printf("Failed to check membership for client %s: %v", userID, err)
				continue
			}
			if !ok {
				_ = c.WriteJSON(fiber.Map{"error": "You are not a participant of this conversation"})
				continue
			}
			chatHub.Join(client, convID.String())
		default:
			_ = c.WriteJSON(fiber.Map{"error": fmt.Sprintf("Unknown event: %s", event.Event)})
		}
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(configs.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
