package payments

import "strings"

const (
	// OrderRefPrefix marks consumer checkout orders ("B2C flow").
	OrderRefPrefix = "rio-order-"
	// InvoiceRefPrefix marks back-office sales invoices ("B2B flow").
	InvoiceRefPrefix = "SINV-"
)

// RefKind discriminates what a gateway external_id refers to.
type RefKind string

const (
	RefKindOrder   RefKind = "b2c_order"
	RefKindInvoice RefKind = "b2b_invoice"
	RefKindUnknown RefKind = "unknown"
)

// ExternalRef is a classified external reference id. ID is the full
// external_id string; for orders it equals the local OrderID, for invoices
// the local InvoiceID.
type ExternalRef struct {
	Kind RefKind
	ID   string
}

// ClassifyExternalRef routes an external_id by its prefix convention.
// Unknown prefixes are not an error; the caller acknowledges and drops them.
func ClassifyExternalRef(externalID string) ExternalRef {
	id := strings.TrimSpace(externalID)
	switch {
	case strings.HasPrefix(id, OrderRefPrefix):
		return ExternalRef{Kind: RefKindOrder, ID: id}
	case strings.HasPrefix(id, InvoiceRefPrefix):
		return ExternalRef{Kind: RefKindInvoice, ID: id}
	default:
		return ExternalRef{Kind: RefKindUnknown, ID: id}
	}
}
