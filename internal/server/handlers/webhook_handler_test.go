package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

type fakeMessaging struct {
	verifyErr error
	handleErr error
	sendErr   error
	handled   int
	sent      []models.OutboundMessageRequest
}

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(_ context.Context, _ models.WebhookPayload) error {
	f.handled++
	return f.handleErr
}

func (f *fakeMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, req)
	return nil
}

func newWebhookRouter(svc *fakeMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func TestVerifyEchoesChallenge(t *testing.T) {
	r := newWebhookRouter(&fakeMessaging{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=tok&hub.challenge=12345", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())
}

func TestVerifyRejectsBadToken(t *testing.T) {
	r := newWebhookRouter(&fakeMessaging{verifyErr: errors.New("token mismatch")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReceiveAcksEvenWhenProcessingFails(t *testing.T) {
	// Meta redelivers on non-2xx responses, which would replay chat commands.
	svc := &fakeMessaging{handleErr: errors.New("upstream send failed")}
	r := newWebhookRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"object":"whatsapp_business_account"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.handled)
}

func TestReceiveRejectsMalformedPayload(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.handled)
}

func TestSendMessageRequiresRecipientAndBody(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/send-message", strings.NewReader(`{"to":"923001234567"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.sent)
}

func TestSendMessageForwardsToChannel(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/send-message", strings.NewReader(`{"to":"923001234567","message":"Dues reminder"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, svc.sent, 1)
	assert.Equal(t, "Dues reminder", svc.sent[0].Message)
}
