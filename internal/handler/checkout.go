package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"stripe-checkout-backend/internal/client"
	"stripe-checkout-backend/internal/dto"
	"stripe-checkout-backend/internal/service"

	"github.com/labstack/echo/v4"
)

// Stripe webhook payloads are small; anything bigger is not ours.
const maxWebhookBodyBytes = int64(65536)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.checkoutService.CreateCheckoutSession(ctx, req.Items)
	if err != nil {
		return checkoutHTTPError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) GetSessionDetail(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no session id provided")
	}

	detail, err := h.checkoutService.GetSessionDetail(ctx, sessionID)
	if err != nil {
		return checkoutHTTPError(err)
	}

	return c.JSON(http.StatusOK, detail)
}

// StripeWebhook acknowledges with 200 unless the signature fails (400,
// never retried by stripe) or storage fails (500, so stripe redelivers).
func (h *CheckoutHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBodyBytes)
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "read webhook body")
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")

	if err := h.checkoutService.HandleWebhook(ctx, body, sigHeader); err != nil {
		if errors.Is(err, client.ErrSignatureInvalid) {
			slog.WarnContext(ctx, "webhook signature verification failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "webhook signature verification failed")
		}
		slog.ErrorContext(ctx, "webhook processing failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook processing failed")
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func checkoutHTTPError(err error) error {
	switch {
	case errors.Is(err, client.ErrGatewayRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, client.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, client.ErrGatewayUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return err
	}
}
