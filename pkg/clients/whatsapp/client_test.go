package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alrehman/poultrybooks/internal/config"
)

type capturedText struct {
	To   string `json:"to"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "1555",
		BaseURL:       srv.URL,
		APIVersion:    "v20.0",
	})
}

func TestSendTextMessagePostsToPhoneNumber(t *testing.T) {
	var got capturedText
	var path, auth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{
		To:   "923001234567",
		Body: "Sale #1 booked for Ali Traders",
	})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
	assert.Equal(t, "/v20.0/1555/messages", path)
	assert.Equal(t, "Bearer token", auth)
	assert.Equal(t, "923001234567", got.To)
	assert.Equal(t, "Sale #1 booked for Ali Traders", got.Text.Body)
}

func TestSendTextMessageTruncatesOversizedBody(t *testing.T) {
	var got capturedText
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.2"}]}`))
	})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{
		To:   "923001234567",
		Body: strings.Repeat("x", maxTextBodyLen+100),
	})
	require.NoError(t, err)
	assert.Len(t, got.Text.Body, maxTextBodyLen)
	assert.True(t, strings.HasSuffix(got.Text.Body, "..."))
}

func TestSendTextMessageSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"recipient not on whatsapp","code":131026}}`))
	})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "0", Body: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "131026")
	assert.Contains(t, err.Error(), "recipient not on whatsapp")
}
