package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/database"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/middleware"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/services"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/store"
	ws "github.com/ushan-Gimhan/SWAPSPOT-BE/websocket"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "handler-test-secret"

// setupTestApp initializes an in-memory SQLite DB and a Fiber app with the
// protected chat and item routes registered.
func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	os.Setenv("JWT_SECRET", testJWTSecret)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.Conversation{},
		&models.Message{},
	))
	database.DB = db

	hub := ws.NewHub()
	InitMessaging(services.NewChatService(store.NewConversationStore(db), store.NewMessageStore(db), hub), hub)

	app := fiber.New()

	chat := app.Group("/api/v1/chat", middleware.Protected())
	chat.Post("", AccessChat)
	chat.Get("/my-conversations", GetMyConversations)
	chat.Post("/message", SendMessage)
	chat.Get("/:conversationId", GetConversationMessages)

	items := app.Group("/api/v1/items")
	items.Get("", GetAllItems)
	items.Post("", middleware.Protected(), CreateItem)
	items.Get("/:id", GetItemByID)
	items.Put("/:id", middleware.Protected(), UpdateItem)
	items.Delete("/:id", middleware.Protected(), DeleteItem)

	return app
}

func seedHandlerUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := models.User{
		FullName: name,
		Email:    name + "-" + uuid.NewString()[:8] + "@example.com",
		Password: "hashed",
		Role:     "user",
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return &user
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func jsonRequest(t *testing.T, method, path, token string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestAccessChatRequiresAuth(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/chat", "", fiber.Map{"counterpart_id": uuid.NewString()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccessChatCreatesAndReturnsSameConversation(t *testing.T) {
	app := setupTestApp(t)
	alice := seedHandlerUser(t, "h-alice")
	bob := seedHandlerUser(t, "h-bob")

	body := fiber.Map{"counterpart_id": bob.ID.String()}

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/chat", tokenFor(t, alice), body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var first services.ConversationResponse
	decodeBody(t, resp, &first)
	require.Len(t, first.Participants, 2)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/v1/chat", tokenFor(t, alice), body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var second services.ConversationResponse
	decodeBody(t, resp, &second)
	assert.Equal(t, first.ID, second.ID)
}

func TestAccessChatRejectsSelfChat(t *testing.T) {
	app := setupTestApp(t)
	alice := seedHandlerUser(t, "h-self")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/chat", tokenFor(t, alice), fiber.Map{"counterpart_id": alice.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload map[string]string
	decodeBody(t, resp, &payload)
	assert.Equal(t, "invalid_participant", payload["kind"])
}

func TestSendAndListMessages(t *testing.T) {
	app := setupTestApp(t)
	alice := seedHandlerUser(t, "h-send")
	bob := seedHandlerUser(t, "h-send2")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/chat", tokenFor(t, alice), fiber.Map{"counterpart_id": bob.ID.String()}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var conversation services.ConversationResponse
	decodeBody(t, resp, &conversation)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/v1/chat/message", tokenFor(t, alice), fiber.Map{
		"conversation_id": conversation.ID.String(),
		"body":            "hello",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var message services.MessageResponse
	decodeBody(t, resp, &message)
	assert.Equal(t, "hello", message.Body)
	assert.Equal(t, alice.ID, message.Sender.ID)

	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/chat/"+conversation.ID.String(), tokenFor(t, bob), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var messages []services.MessageResponse
	decodeBody(t, resp, &messages)
	require.Len(t, messages, 1)
	assert.Equal(t, message.ID, messages[0].ID)

	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/chat/my-conversations", tokenFor(t, bob), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var conversations []services.ConversationResponse
	decodeBody(t, resp, &conversations)
	require.Len(t, conversations, 1)
	assert.Equal(t, "hello", conversations[0].LastMessage)
}

func TestOutsiderCannotReadConversation(t *testing.T) {
	app := setupTestApp(t)
	alice := seedHandlerUser(t, "h-out")
	bob := seedHandlerUser(t, "h-out2")
	mallory := seedHandlerUser(t, "h-out3")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/chat", tokenFor(t, alice), fiber.Map{"counterpart_id": bob.ID.String()}))
	require.NoError(t, err)
	var conversation services.ConversationResponse
	decodeBody(t, resp, &conversation)

	resp, err = app.Test(jsonRequest(t, "GET", "/api/v1/chat/"+conversation.ID.String(), tokenFor(t, mallory), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/v1/chat/message", tokenFor(t, mallory), fiber.Map{
		"conversation_id": conversation.ID.String(),
		"body":            "let me in",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSendMessageRejectsInvalidData(t *testing.T) {
	app := setupTestApp(t)
	alice := seedHandlerUser(t, "h-bad")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/v1/chat/message", tokenFor(t, alice), fiber.Map{
		"conversation_id": "not-a-uuid",
		"body":            "hi",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/v1/chat/message", tokenFor(t, alice), fiber.Map{
		"conversation_id": uuid.NewString(),
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
