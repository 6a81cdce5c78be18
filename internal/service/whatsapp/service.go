package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/config"
	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/service/commands"
	client "github.com/mamadbah2/proporco/pkg/clients/whatsapp"
)

const unregisteredReply = "Número não cadastrado. Peça ao administrador da granja para vincular seu WhatsApp."

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// AccountResolver maps a sender number to the account it belongs to.
type AccountResolver interface {
	AccountByPhone(ctx context.Context, phone string) (models.Account, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	accounts   AccountResolver
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, accounts AccountResolver, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		accounts:   accounts,
		dispatcher: dispatcher,
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

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook runs every worker command in the payload and replies to each sender.
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

	account, err := s.accounts.AccountByPhone(ctx, msg.From)
	if errors.Is(err, errs.ErrNotFound) {
		s.logger.Info("message from unregistered number", zap.String("from", msg.From))
		return s.reply(ctx, msg.From, unregisteredReply)
	}
	if err != nil {
		return fmt.Errorf("resolve sender: %w", err)
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("account_id", account.ID),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	outbound, err := s.dispatcher.HandleCommand(ctx, cmd, account)
	if err != nil {
		outbound = replyForError(err)
		if !errs.IsDomain(err) || errors.Is(err, errs.ErrStorage) {
			s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		}
	}
	return s.reply(ctx, msg.From, outbound)
}

func replyForError(err error) string {
	var notFound *errs.NotFoundError
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand), errors.Is(err, commands.ErrInvalidArguments):
		return commands.Usage
	case errors.As(err, &notFound):
		return fmt.Sprintf("Não encontrado: %s.", notFound.ID)
	case errors.Is(err, errs.ErrNotFound):
		return "Registro não encontrado."
	case errors.Is(err, errs.ErrValidation):
		return "Dados inválidos. " + commands.Usage
	case errors.Is(err, errs.ErrConflict):
		return "Operação recusada: " + err.Error()
	default:
		return "Não foi possível registrar agora. Tente novamente mais tarde."
	}
}

func (s *MetaWhatsAppService) reply(ctx context.Context, to, body string) error {
	return s.SendOutbound(ctx, models.OutboundMessageRequest{To: to, Message: body})
}

// SendOutbound pushes a text message to a number.
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
