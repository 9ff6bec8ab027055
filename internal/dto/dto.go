package dto

// CartItem prices are in major currency units (e.g. whole kroner); the
// Stripe client converts to the smallest unit when building the session.
type CartItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type CheckoutRequest struct {
	Items []CartItem `json:"items"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type AddressDetail struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type LineItemDetail struct {
	Name        string `json:"name"`
	UnitAmount  int64  `json:"unit_amount"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
}

type SessionDetail struct {
	SessionID   string           `json:"session_id"`
	Status      string           `json:"status"`
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	Shipping    AddressDetail    `json:"shipping"`
	Items       []LineItemDetail `json:"items"`
	AmountTotal int64            `json:"amount_total"`
	Currency    string           `json:"currency"`
}
