package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"stripe-checkout-backend/internal/client"
	"stripe-checkout-backend/internal/dto"
	"stripe-checkout-backend/internal/model"
	"stripe-checkout-backend/internal/repository"
)

const eventCheckoutCompleted = "checkout.session.completed"

type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, items []dto.CartItem) (*dto.CheckoutResponse, error)
	GetSessionDetail(ctx context.Context, sessionID string) (*dto.SessionDetail, error)
	HandleWebhook(ctx context.Context, body []byte, sigHeader string) error
}

type checkoutServiceImpl struct {
	gateway          client.StripeGateway
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewCheckoutService(
	gateway client.StripeGateway,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		gateway:          gateway,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
	}
}

func (s *checkoutServiceImpl) CreateCheckoutSession(ctx context.Context, items []dto.CartItem) (*dto.CheckoutResponse, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", client.ErrGatewayRequest)
	}
	for i, item := range items {
		if item.Name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", client.ErrGatewayRequest, i)
		}
		if item.Price <= 0 {
			return nil, fmt.Errorf("%w: item %q has non-positive price", client.ErrGatewayRequest, item.Name)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %q has non-positive quantity", client.ErrGatewayRequest, item.Name)
		}
	}

	resp, err := s.gateway.CreateCheckoutSession(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	slog.InfoContext(ctx, "checkout session created", "session_id", resp.SessionID)
	return resp, nil
}

func (s *checkoutServiceImpl) GetSessionDetail(ctx context.Context, sessionID string) (*dto.SessionDetail, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", client.ErrSessionNotFound)
	}

	detail, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve session: %w", err)
	}

	return detail, nil
}

// HandleWebhook ingests one webhook delivery. Stripe redelivers until it
// sees a success response, so everything here must be safe to repeat:
// the lookup plus the unique index on stripe_session_id guarantee
// at-most-once order creation.
func (s *checkoutServiceImpl) HandleWebhook(ctx context.Context, body []byte, sigHeader string) error {
	event, err := s.gateway.VerifyEvent(body, sigHeader)
	if err != nil {
		return fmt.Errorf("verify webhook event: %w", err)
	}

	if event.Type != eventCheckoutCompleted {
		slog.InfoContext(ctx, "ignoring webhook event", "event_id", event.ID, "event_type", event.Type)
		return nil
	}

	sess := event.Session
	if sess == nil || sess.SessionID == "" {
		return fmt.Errorf("completed event %s carries no checkout session", event.ID)
	}

	if _, err := s.orderRepo.FindBySessionID(ctx, sess.SessionID); err == nil {
		slog.InfoContext(ctx, "order already recorded, skipping insert",
			"event_id", event.ID, "session_id", sess.SessionID)
		s.markEventProcessed(ctx, event)
		return nil
	} else if !errors.Is(err, repository.ErrOrderNotFound) {
		return fmt.Errorf("look up order for session %s: %w", sess.SessionID, err)
	}

	order := orderFromSession(sess)
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			// a concurrent delivery won the race, the order exists
			slog.InfoContext(ctx, "order inserted by concurrent delivery",
				"event_id", event.ID, "session_id", sess.SessionID)
			s.markEventProcessed(ctx, event)
			return nil
		}
		return fmt.Errorf("store order for session %s: %w", sess.SessionID, err)
	}

	slog.InfoContext(ctx, "order recorded",
		"order_id", order.ID, "session_id", sess.SessionID, "email", order.Email, "total", order.Total)
	s.markEventProcessed(ctx, event)
	return nil
}

// orderFromSession maps a completed session onto order columns. Missing
// customer or shipping data becomes empty values; the payment already
// succeeded, so a formatting shortfall must not lose the order.
func orderFromSession(sess *client.CompletedSession) *model.Order {
	items := "[]"
	if len(sess.Items) > 0 {
		if raw, err := json.Marshal(sess.Items); err == nil {
			items = string(raw)
		}
	}

	return &model.Order{
		StripeSessionID: sess.SessionID,
		Email:           sess.Email,
		Name:            sess.Name,
		Line1:           sess.Address.Line1,
		Line2:           sess.Address.Line2,
		City:            sess.Address.City,
		PostalCode:      sess.Address.PostalCode,
		Country:         sess.Address.Country,
		Phone:           sess.Phone,
		Items:           items,
		Total:           sess.AmountTotal,
	}
}

// Audit trail only; a failure here must not turn an acknowledged
// delivery into a retry.
func (s *checkoutServiceImpl) markEventProcessed(ctx context.Context, event *client.WebhookEvent) {
	exists, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err == nil && exists {
		return
	}
	if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, event.Type); err != nil {
		slog.WarnContext(ctx, "record processed webhook event",
			"event_id", event.ID, "error", err)
	}
}
