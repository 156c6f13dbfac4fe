package payments

// InvoiceCallback is the JSON body the gateway posts on invoice lifecycle
// events (paid, expired, failed). ExternalID carries the merchant-assigned
// reference used to correlate the event with a local order or invoice.
type InvoiceCallback struct {
	ID                 string  `json:"id" validate:"required"`
	ExternalID         string  `json:"external_id" validate:"required"`
	Status             string  `json:"status" validate:"required"`
	PaymentMethod      string  `json:"payment_method"`
	PaymentChannel     string  `json:"payment_channel"`
	PaymentDestination string  `json:"payment_destination"`
	PaidAmount         float64 `json:"paid_amount"`
	PaidAt             string  `json:"paid_at"`
}

// PaymentReference returns the most specific payment method/channel string
// carried by the callback, used when recording how an invoice was settled.
func (c InvoiceCallback) PaymentReference() string {
	if c.PaymentChannel != "" {
		return c.PaymentChannel
	}
	return c.PaymentMethod
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	ExternalID      string
	GatewayStatus   string
	PayloadJSON     string
	TokenValid      bool
}
