package intent

import "strings"

// Intent is the classified purpose of a customer message.
type Intent string

const (
	ProductInfo    Intent = "product_info"
	OrderStatus    Intent = "order_status"
	DeliveryPolicy Intent = "delivery_policy"
	ReturnPolicy   Intent = "return_policy"
	Generic        Intent = "generic"
)

// ParseIntent maps raw classifier output onto a known intent. Unknown values report false.
func ParseIntent(raw string) (Intent, bool) {
	switch Intent(normalizeLabel(raw)) {
	case ProductInfo:
		return ProductInfo, true
	case OrderStatus:
		return OrderStatus, true
	case DeliveryPolicy:
		return DeliveryPolicy, true
	case ReturnPolicy:
		return ReturnPolicy, true
	case Generic:
		return Generic, true
	default:
		return "", false
	}
}

// InfoType narrows a product question to one attribute. The zero value means not requested.
type InfoType string

const (
	InfoNone           InfoType = ""
	InfoPrice          InfoType = "price"
	InfoStock          InfoType = "stock"
	InfoStockByVariant InfoType = "stock_by_variant"
	InfoColor          InfoType = "color"
	InfoSize           InfoType = "size"
	InfoVariants       InfoType = "variants"
)

// ParseInfoType maps raw classifier output onto a known info subtype.
func ParseInfoType(raw string) (InfoType, bool) {
	switch InfoType(normalizeLabel(raw)) {
	case InfoPrice:
		return InfoPrice, true
	case InfoStock:
		return InfoStock, true
	case InfoStockByVariant:
		return InfoStockByVariant, true
	case InfoColor, "colour":
		return InfoColor, true
	case InfoSize:
		return InfoSize, true
	case InfoVariants:
		return InfoVariants, true
	default:
		return InfoNone, false
	}
}

// normalizeLabel lowercases a label and joins its words with underscores,
// so "Stock By Variant" and "stock-by-variant" both read as stock_by_variant.
func normalizeLabel(raw string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '_'
	}), "_")
}

// Analysis is the structured result of classifying one inbound message.
// Optional fields are empty when the classifier did not provide them.
type Analysis struct {
	Intent      Intent   `json:"intent"`
	ProductName string   `json:"productName,omitempty"`
	OrderID     string   `json:"orderId,omitempty"`
	Email       string   `json:"email,omitempty"`
	Info        InfoType `json:"info,omitempty"`
}

// Default returns the analysis used when nothing could be classified.
func Default() Analysis {
	return Analysis{Intent: Generic}
}

// HasOrderReference reports whether an order id or email was extracted.
func (a Analysis) HasOrderReference() bool {
	return a.OrderID != "" || a.Email != ""
}
