// Package whatsapp connects the WhatsApp Cloud API webhook to the herd
// command dispatcher and pushes outbound notifications.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/service/commands"
	client "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// Replies for messages the dispatcher cannot answer.
const (
	UnknownSenderReply = "This number is not linked to a Herdbook account. Add it to your profile to use the bot."
	FailureReply       = "Sorry, that query failed. Please try again later."
)

// MessagingService describes the operations the HTTP layer and the scheduler
// can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	SendDigest(ctx context.Context, user models.User, digest string) error
}

// UserResolver finds the account linked to a WhatsApp number.
type UserResolver interface {
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
}

// Options configures the webhook verification.
type Options struct {
	VerifyToken string
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	opts       Options
	client     client.Client
	users      UserResolver
	dispatcher commands.Dispatcher
	recorder   metrics.Recorder
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(opts Options, c client.Client, users UserResolver, dispatcher commands.Dispatcher, recorder metrics.Recorder, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		opts:       opts,
		client:     c,
		users:      users,
		dispatcher: dispatcher,
		recorder:   metrics.OrNop(recorder),
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if s.opts.VerifyToken == "" || verifyToken != s.opts.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message of the payload. Processing
// continues past failures; the first error is returned.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
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
	text := msg.Body()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	user, err := s.users.GetUserByPhone(ctx, models.NormalizePhone(msg.From))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("message from unknown number", zap.String("from", msg.From))
			return s.send(ctx, msg.From, UnknownSenderReply)
		}
		return fmt.Errorf("resolve sender: %w", err)
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("user_id", user.ID),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, user.ID)
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrUnsupportedCommand):
		reply = "Unknown command.\n" + commands.HelpText
	case errors.Is(err, commands.ErrInvalidArguments):
		reply = "Could not read that command.\n" + commands.HelpText
	default:
		if sendErr := s.send(ctx, msg.From, FailureReply); sendErr != nil {
			s.logger.Warn("failure reply not sent", zap.Error(sendErr))
		}
		return err
	}

	return s.send(ctx, msg.From, reply)
}

// SendOutbound pushes a plain text message.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         models.NormalizePhone(req.To),
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

// SendDigest delivers the daily digest to a user's linked number.
func (s *MetaWhatsAppService) SendDigest(ctx context.Context, user models.User, digest string) error {
	if user.WhatsAppPhone == "" {
		return nil
	}
	if err := s.send(ctx, user.WhatsAppPhone, digest); err != nil {
		return fmt.Errorf("send digest to %s: %w", user.ID, err)
	}
	s.recorder.RecordEvent(metrics.EventDigestSent)
	return nil
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string) error {
	return s.SendOutbound(ctx, models.OutboundMessageRequest{To: to, Message: body})
}
