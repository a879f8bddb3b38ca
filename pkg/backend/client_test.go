package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateTicket(t *testing.T) {
	var gotPath, gotAuth, gotApiKey string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotApiKey = r.Header.Get("X-API-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-key", 5*time.Second)
	err := client.CreateTicket(context.Background(), "user-token", &TicketPayload{
		ConversationId: "conv-1",
		UserId:         "user-1",
		Title:          "Printer offline",
		Summary:        "Device unreachable after firmware update",
		ConversationHistory: []HistoryMessage{
			{Role: "user", Content: "my printer is offline"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "/ticket", gotPath)
	assert.Equal(t, "Bearer user-token", gotAuth)
	assert.Equal(t, "service-key", gotApiKey)
	assert.Equal(t, "conv-1", gotBody["conversationId"])
	assert.Equal(t, "Printer offline", gotBody["title"])
}

func TestSaveSummary(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-key", 5*time.Second)
	err := client.SaveSummary(context.Background(), "user-token", &SummaryPayload{
		ConversationId: "conv-1",
		Topic:          "Printer troubleshooting",
		Summary:        "User resolved connectivity issue",
	})

	assert.NoError(t, err)
	assert.Equal(t, "/conversation", gotPath)
}

func TestSyncMessages(t *testing.T) {
	var gotBody MessagesPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-key", 5*time.Second)
	err := client.SyncMessages(context.Background(), "user-token", &MessagesPayload{
		ConversationId: "conv-1",
		Messages: []TurnMessage{
			{SenderType: "user", Content: "hello"},
			{SenderType: "assistant", Content: "hi, how can I help?"},
		},
	})

	assert.NoError(t, err)
	assert.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "assistant", gotBody.Messages[1].SenderType)
}

func TestBackendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-key", 5*time.Second)
	err := client.SyncMessages(context.Background(), "expired-token", &MessagesPayload{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
