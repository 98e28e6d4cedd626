package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/config"
	"github.com/alrehman/poultrybooks/internal/domain/models"
	"github.com/alrehman/poultrybooks/internal/service/commands"
	"github.com/alrehman/poultrybooks/pkg/clients/anthropic"
	client "github.com/alrehman/poultrybooks/pkg/clients/whatsapp"
)

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp
// Cloud API: operators text the books and the dispatcher answers.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	ai         anthropic.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. The AI client may be
// nil; free-text translation is then disabled and only slash commands work.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, ai anthropic.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		ai:         ai,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

var usageReplies = map[models.CommandType]string{
	models.CommandSale:    "Book a sale with customer, farm, birds, weight and rate, e.g. /sale 3 1 450 620.5 310 LEB-4521.",
	models.CommandReceipt: "Record a receipt with customer and amount (account optional), e.g. /receipt 3 50000 2.",
	models.CommandBalance: "Check what a customer owes, e.g. /balance 3.",
	models.CommandStock:   "List remaining birds per farm: /stock.",
	models.CommandDues:    "List outstanding dues oldest-first: /dues.",
	models.CommandSummary: "Get the books summary: /summary.",
	models.CommandUnknown: "Unknown command. Supported: /sale, /receipt, /balance, /stock, /dues, /summary.",
}

// VerifyWebhookToken validates the callback verification challenge.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	if len(payload.Entry) == 0 {
		return nil
	}

	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) == 0 {
				continue
			}

			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		return errors.New("empty message body")
	}

	cmd := models.ParseCommand(text)

	// Free-text fallback: let the AI translator turn prose like "sold 450
	// birds to bismillah traders" into a slash command before giving up.
	if cmd.Type == models.CommandUnknown && s.ai != nil {
		translated, err := s.ai.TranslateToCommand(ctx, text)
		if err != nil {
			s.logger.Warn("free-text translation failed", zap.Error(err))
		} else if translated != "" {
			cmd = models.ParseCommand(translated)
			s.logger.Info("free text translated",
				zap.String("input", text),
				zap.String("command", translated))
		}
	}

	reply := s.executeCommand(ctx, cmd, msg.From)

	s.logger.Info("inbound command handled",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)))

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         msg.From,
		Body:       reply,
		PreviewURL: false,
	})
	return err
}

// executeCommand runs the dispatcher and maps failures onto operator-facing
// usage text. Errors never propagate as webhook failures; the sender always
// gets an answer.
func (s *MetaWhatsAppService) executeCommand(ctx context.Context, cmd models.Command, sender string) string {
	if cmd.Type == models.CommandUnknown {
		return usageReplies[models.CommandUnknown]
	}

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, sender)
	if err == nil {
		return reply
	}

	if errors.Is(err, commands.ErrInvalidArguments) || errors.Is(err, commands.ErrUnsupportedCommand) {
		if usage, ok := usageReplies[cmd.Type]; ok {
			return usage
		}
		return usageReplies[models.CommandUnknown]
	}

	return fmt.Sprintf("Could not complete /%s: %s.", cmd.Type, err.Error())
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
