package commerce

// Product mirrors the storefront product resource fields the assistant reads.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Options  []Option  `json:"options"`
	Variants []Variant `json:"variants"`
}

// Option names one variant dimension (size, color...). Position is 1-based.
type Option struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Variant is one purchasable combination of option values.
type Variant struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Price             string  `json:"price"`
	InventoryQuantity int     `json:"inventory_quantity"`
	Option1           *string `json:"option1"`
	Option2           *string `json:"option2"`
	Option3           *string `json:"option3"`
}

// OptionValue returns the variant value at the 1-based option position.
func (v Variant) OptionValue(position int) string {
	var value *string
	switch position {
	case 1:
		value = v.Option1
	case 2:
		value = v.Option2
	case 3:
		value = v.Option3
	}
	if value == nil {
		return ""
	}
	return *value
}

// OptionValues returns the non-empty option values in position order.
func (v Variant) OptionValues() []string {
	values := make([]string, 0, 3)
	for pos := 1; pos <= 3; pos++ {
		if val := v.OptionValue(pos); val != "" {
			values = append(values, val)
		}
	}
	return values
}

// ProductLookup separates "no product matched" from a failed request, which is reported as an error.
type ProductLookup struct {
	Found   bool
	Product Product
}
