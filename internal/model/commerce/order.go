package commerce

// Order mirrors the storefront order resource fields the assistant reads.
type Order struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	FinancialStatus   string  `json:"financial_status"`
	FulfillmentStatus *string `json:"fulfillment_status"`
}

// Fulfillment returns the fulfillment status, treating a missing status as unfulfilled.
func (o Order) Fulfillment() string {
	if o.FulfillmentStatus == nil || *o.FulfillmentStatus == "" {
		return "unfulfilled"
	}
	return *o.FulfillmentStatus
}

// OrderLookup separates "no order matched" from a failed request.
type OrderLookup struct {
	Found bool
	Order Order
}
