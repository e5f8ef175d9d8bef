package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/store"
	"gorm.io/gorm"
)

var (
	ErrInvalidParticipant    = errors.New("invalid chat participant")
	ErrParticipantNotFound   = errors.New("chat participant not found")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrNotParticipant        = errors.New("not a participant of this conversation")
	ErrInvalidConversationID = errors.New("invalid conversation id")
	ErrEmptyMessageBody      = errors.New("message body cannot be empty")
)

// ParticipantInfo is the resolved display view of a conversation party.
type ParticipantInfo struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Avatar   *string   `json:"avatar"`
	Role     string    `json:"role"`
}

// ListingSummary is the resolved view of the listing a conversation is about.
type ListingSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Price  float64   `json:"price"`
	Images []string  `json:"images"`
}

type ConversationResponse struct {
	ID           uuid.UUID         `json:"id"`
	Participants []ParticipantInfo `json:"participants"`
	Item         *ListingSummary   `json:"item,omitempty"`
	LastMessage  string            `json:"last_message"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type MessageResponse struct {
	ID             uuid.UUID       `json:"id"`
	ConversationID uuid.UUID       `json:"conversation_id"`
	Sender         ParticipantInfo `json:"sender"`
	Body           string          `json:"body"`
	Read           bool            `json:"read"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Notifier relays a persisted message to live listeners. Delivery is best
// effort; persistence is the durability contract, not the relay.
type Notifier interface {
	RelayMessage(message *MessageResponse, participantIDs []uuid.UUID)
}

// ChatService is the only component that touches both chat stores and
// triggers the realtime gateway.
type ChatService struct {
	conversations *store.ConversationStore
	messages      *store.MessageStore
	notifier      Notifier
}

func NewChatService(conversations *store.ConversationStore, messages *store.MessageStore, notifier Notifier) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		notifier:      notifier,
	}
}

// AccessConversation finds or lazily creates the conversation between the
// requester and a counterpart, optionally scoped to a listing. Safe to call
// concurrently: a duplicate-key failure from the unique (pair, scope) index
// means somebody else won the race, so the surviving row is re-fetched.
func (s *ChatService) AccessConversation(ctx context.Context, requesterID uuid.UUID, counterpartID, itemID string) (*ConversationResponse, error) {
	counterpart, err := uuid.Parse(counterpartID)
	if err != nil || counterpart == uuid.Nil {
		return nil, ErrInvalidParticipant
	}
	if counterpart == requesterID {
		return nil, ErrInvalidParticipant
	}

	// an empty or malformed scope means a general conversation
	scope, err := uuid.Parse(itemID)
	if err != nil {
		scope = uuid.Nil
	}

	conversation, err := s.conversations.Find(ctx, requesterID, counterpart, scope)
	if err == nil {
		return s.toConversationResponse(conversation), nil
	}
	if !errors.Is(err, store.ErrConversationNotFound) {
		return nil, err
	}

	conversation, err = s.conversations.Create(ctx, requesterID, counterpart, scope)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// lost the first-contact race; the other call created it
			conversation, err = s.conversations.Find(ctx, requesterID, counterpart, scope)
			if err != nil {
				return nil, err
			}
		case errors.Is(err, store.ErrSelfConversation):
			return nil, ErrInvalidParticipant
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrParticipantNotFound
		default:
			return nil, err
		}
	}

	return s.toConversationResponse(conversation), nil
}

// PostMessage appends a message, refreshes the conversation summary, and
// relays the resolved message to live listeners. The relay is called inline
// so successive appends reach listeners in append order; it never waits for
// delivery confirmation, and its outcome never affects the persisted write.
func (s *ChatService) PostMessage(ctx context.Context, requesterID uuid.UUID, conversationID, body string) (*MessageResponse, error) {
	convID, err := uuid.Parse(conversationID)
	if err != nil || convID == uuid.Nil {
		return nil, ErrInvalidConversationID
	}

	conversation, err := s.conversations.GetByID(ctx, convID)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !conversation.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}

	// once the append is dispatched it runs to completion even if the
	// client hangs up before the response is written
	writeCtx := context.WithoutCancel(ctx)

	message, err := s.messages.Append(writeCtx, convID, requesterID, body)
	if err != nil {
		if errors.Is(err, store.ErrEmptyBody) {
			return nil, ErrEmptyMessageBody
		}
		return nil, err
	}

	if err := s.conversations.TouchLastMessage(writeCtx, convID, message.Body); err != nil {
		log.Printf("Failed to update last message for conversation %s: %v", convID, err)
	}

	response := s.toMessageResponse(message, conversation)

	if s.notifier != nil {
		participants := []uuid.UUID{conversation.UserOneID, conversation.UserTwoID}
		s.notifier.RelayMessage(response, participants)
	}

	return response, nil
}

// ListMyConversations returns the requester's conversations, most recently
// active first, with participants and listing scope resolved.
func (s *ChatService) ListMyConversations(ctx context.Context, requesterID uuid.UUID) ([]ConversationResponse, error) {
	conversations, err := s.conversations.ListForUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	responses := make([]ConversationResponse, 0, len(conversations))
	for i := range conversations {
		responses = append(responses, *s.toConversationResponse(&conversations[i]))
	}
	return responses, nil
}

// ListMessages returns a conversation's messages oldest first. Only
// participants may read.
func (s *ChatService) ListMessages(ctx context.Context, requesterID uuid.UUID, conversationID string) ([]MessageResponse, error) {
	convID, err := uuid.Parse(conversationID)
	if err != nil || convID == uuid.Nil {
		return nil, ErrInvalidConversationID
	}

	conversation, err := s.conversations.GetByID(ctx, convID)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !conversation.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}

	messages, err := s.messages.ListForConversation(ctx, convID)
	if err != nil {
		return nil, err
	}

	responses := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		responses = append(responses, MessageResponse{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Sender:         toParticipantInfo(&m.Sender),
			Body:           m.Body,
			Read:           m.Read,
			CreatedAt:      m.CreatedAt,
		})
	}
	return responses, nil
}

// IsParticipant reports whether the user belongs to the conversation. The
// realtime gateway uses it to authorize room joins.
func (s *ChatService) IsParticipant(ctx context.Context, userID, conversationID uuid.UUID) (bool, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			return false, nil
		}
		return false, err
	}
	return conversation.HasParticipant(userID), nil
}

func toParticipantInfo(user *models.User) ParticipantInfo {
	return ParticipantInfo{
		ID:       user.ID,
		FullName: user.FullName,
		Avatar:   user.Avatar,
		Role:     user.Role,
	}
}

func (s *ChatService) toConversationResponse(conversation *models.Conversation) *ConversationResponse {
	response := &ConversationResponse{
		ID: conversation.ID,
		Participants: []ParticipantInfo{
			toParticipantInfo(&conversation.UserOne),
			toParticipantInfo(&conversation.UserTwo),
		},
		LastMessage: conversation.LastMessage,
		CreatedAt:   conversation.CreatedAt,
		UpdatedAt:   conversation.UpdatedAt,
	}
	if conversation.ItemID != uuid.Nil && conversation.Item != nil {
		response.Item = &ListingSummary{
			ID:     conversation.Item.ID,
			Title:  conversation.Item.Title,
			Price:  conversation.Item.Price,
			Images: conversation.Item.Images,
		}
	}
	return response
}

func (s *ChatService) toMessageResponse(message *models.Message, conversation *models.Conversation) *MessageResponse {
	sender := conversation.UserOne
	if conversation.UserTwoID == message.SenderID {
		sender = conversation.UserTwo
	}
	return &MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Sender:         toParticipantInfo(&sender),
		Body:           message.Body,
		Read:           message.Read,
		CreatedAt:      message.CreatedAt,
	}
}
