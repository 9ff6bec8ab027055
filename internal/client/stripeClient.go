package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"stripe-checkout-backend/internal/config"
	"stripe-checkout-backend/internal/dto"

	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrSignatureInvalid   = errors.New("webhook signature invalid")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrGatewayUnavailable = errors.New("stripe unavailable")
	ErrGatewayRequest     = errors.New("invalid checkout request")
)

// WebhookEvent is a verified, parsed Stripe event. Session is populated
// for checkout.session.* events only.
type WebhookEvent struct {
	ID      string
	Type    string
	Session *CompletedSession
}

// CompletedSession carries the fields webhook ingestion maps onto an
// order. Stripe does not expand line items on webhook payloads, so
// Items is usually empty there.
type CompletedSession struct {
	SessionID   string
	Email       string
	Name        string
	Phone       string
	Address     dto.AddressDetail
	Items       []dto.LineItemDetail
	AmountTotal int64
}

type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, items []dto.CartItem) (*dto.CheckoutResponse, error)
	RetrieveSession(ctx context.Context, sessionID string) (*dto.SessionDetail, error)
	VerifyEvent(payload []byte, sigHeader string) (*WebhookEvent, error)
}

type stripeGatewayImpl struct {
	api *stripeclient.API
	cfg *config.Stripe
}

func NewStripeGateway(stripeCfg *config.Stripe) StripeGateway {
	return &stripeGatewayImpl{
		api: stripeclient.New(stripeCfg.SecretKey, nil),
		cfg: stripeCfg,
	}
}

func buildCheckoutParams(stripeCfg *config.Stripe, items []dto.CartItem) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(items))
	for i, item := range items {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(stripeCfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				// request prices are in major units, stripe wants the
				// smallest currency unit
				UnitAmount: stripe.Int64(item.Price * 100),
			},
			Quantity: stripe.Int64(item.Quantity),
		}
	}

	return &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(stripeCfg.AllowedCountries),
		},
		SuccessURL: stripe.String(stripeCfg.SuccessURL),
		CancelURL:  stripe.String(stripeCfg.CancelURL),
	}
}

func (g *stripeGatewayImpl) CreateCheckoutSession(ctx context.Context, items []dto.CartItem) (*dto.CheckoutResponse, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrGatewayRequest)
	}

	params := buildCheckoutParams(g.cfg, items)
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	return &dto.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

func (g *stripeGatewayImpl) RetrieveSession(ctx context.Context, sessionID string) (*dto.SessionDetail, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items.data.price.product")
	params.AddExpand("customer_details")

	sess, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	detail := &dto.SessionDetail{
		SessionID:   sess.ID,
		Status:      string(sess.Status),
		AmountTotal: sess.AmountTotal,
		Currency:    string(sess.Currency),
		Items:       lineItemDetails(sess.LineItems),
	}
	if cd := sess.CustomerDetails; cd != nil {
		detail.Email = cd.Email
		detail.Name = cd.Name
		detail.Phone = cd.Phone
		detail.Shipping = addressDetail(cd.Address)
	}
	if sd := sess.ShippingDetails; sd != nil {
		if sd.Name != "" {
			detail.Name = sd.Name
		}
		if sd.Address != nil {
			detail.Shipping = addressDetail(sd.Address)
		}
	}

	return detail, nil
}

func (g *stripeGatewayImpl) VerifyEvent(payload []byte, sigHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	parsed := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if strings.HasPrefix(parsed.Type, "checkout.session.") {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session from event %s: %w", event.ID, err)
		}
		parsed.Session = completedSession(&sess)
	}

	return parsed, nil
}

// completedSession maps a webhook session payload onto order fields.
// Shipping details win over customer details for name and address;
// email and phone only exist on customer details. Missing blocks map to
// empty values, they never fail the event.
func completedSession(sess *stripe.CheckoutSession) *CompletedSession {
	cs := &CompletedSession{
		SessionID:   sess.ID,
		AmountTotal: sess.AmountTotal,
		Items:       lineItemDetails(sess.LineItems),
	}
	if cd := sess.CustomerDetails; cd != nil {
		cs.Email = cd.Email
		cs.Name = cd.Name
		cs.Phone = cd.Phone
		cs.Address = addressDetail(cd.Address)
	}
	if sd := sess.ShippingDetails; sd != nil {
		if sd.Name != "" {
			cs.Name = sd.Name
		}
		if sd.Address != nil {
			cs.Address = addressDetail(sd.Address)
		}
	}
	return cs
}

func addressDetail(addr *stripe.Address) dto.AddressDetail {
	if addr == nil {
		return dto.AddressDetail{}
	}
	return dto.AddressDetail{
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func lineItemDetails(list *stripe.LineItemList) []dto.LineItemDetail {
	if list == nil {
		return nil
	}
	items := make([]dto.LineItemDetail, 0, len(list.Data))
	for _, li := range list.Data {
		detail := dto.LineItemDetail{
			Name:        li.Description,
			Quantity:    li.Quantity,
			AmountTotal: li.AmountTotal,
		}
		if li.Price != nil {
			detail.UnitAmount = li.Price.UnitAmount
			if li.Price.Product != nil && li.Price.Product.Name != "" {
				detail.Name = li.Price.Product.Name
			}
		}
		items = append(items, detail)
	}
	return items
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, stripeErr.Msg)
		}
		if stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return fmt.Errorf("%w: %s", ErrGatewayRequest, stripeErr.Msg)
		}
	}
	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
}
