package policy

import "github.com/botify/storebot/backend/internal/model/intent"

// Policy is a canned store policy answered without calling the language model.
type Policy struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Text  string        `json:"text"`
	For   intent.Intent `json:"intent"`
}

const (
	DeliveryID = "delivery"
	ReturnID   = "return"
)

// Seed provides the default store policies.
func Seed() []Policy {
	return []Policy{
		{
			ID:    DeliveryID,
			Title: "Delivery",
			Text:  "We deliver worldwide within 3–5 business days. Shipping is free on orders over $50.",
			For:   intent.DeliveryPolicy,
		},
		{
			ID:    ReturnID,
			Title: "Returns",
			Text:  "Returns are accepted within 30 days of purchase. Products must be unused and in original packaging.",
			For:   intent.ReturnPolicy,
		},
	}
}

// WithOverrides replaces policy texts by id. Empty overrides keep the seeded text.
func WithOverrides(items []Policy, texts map[string]string) []Policy {
	out := append([]Policy(nil), items...)
	for i := range out {
		if text, ok := texts[out[i].ID]; ok && text != "" {
			out[i].Text = text
		}
	}
	return out
}
