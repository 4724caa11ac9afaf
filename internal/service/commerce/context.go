package commerce

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/botify/storebot/backend/internal/model/commerce"
	"github.com/botify/storebot/backend/internal/model/intent"
)

// InfoNotFound is returned when a product cannot answer the requested information.
const InfoNotFound = "I couldn't find that information."

const (
	// CurrencySymbol prefixes rendered prices; the admin API reports amounts without currency.
	CurrencySymbol = "$"

	maxDescriptionRunes = 300
	maxContextRunes     = 1500
	variantSeparator    = " / "
)

var (
	colorOptionNames = []string{"color", "colour"}
	sizeOptionNames  = []string{"size"}
)

// BuildContext renders the part of product relevant to info as prompt-ready text.
// An empty info renders the full summary; the result never exceeds maxContextRunes.
func BuildContext(product commerce.Product, info intent.InfoType) string {
	if len(product.Variants) == 0 {
		return InfoNotFound
	}

	var out string
	switch info {
	case intent.InfoNone:
		out = FullContext(product)
	case intent.InfoPrice:
		out = strings.Join(distinctPrices(product.Variants), ", ")
	case intent.InfoStock:
		if len(product.Variants) == 1 {
			out = fmt.Sprintf("%d units in stock.", product.Variants[0].InventoryQuantity)
		} else {
			out = variantBreakdown(product.Variants)
		}
	case intent.InfoStockByVariant, intent.InfoVariants:
		out = variantBreakdown(product.Variants)
	case intent.InfoColor:
		out = renderOptionSet("Available colors", optionValues(product, colorOptionNames, 1))
	case intent.InfoSize:
		out = renderOptionSet("Available sizes", optionValues(product, sizeOptionNames, 2))
	default:
		return InfoNotFound
	}

	if out == "" {
		out = FullContext(product)
	}
	return truncate(out, maxContextRunes)
}

// FullContext summarises title, description, prices, colors, sizes and total inventory.
func FullContext(product commerce.Product) string {
	if len(product.Variants) == 0 {
		return InfoNotFound
	}

	lines := []string{"Product: " + strings.TrimSpace(product.Title)}
	if desc := truncate(PlainText(product.BodyHTML), maxDescriptionRunes); desc != "" {
		lines = append(lines, "Description: "+desc)
	}
	if prices := distinctPrices(product.Variants); len(prices) > 0 {
		lines = append(lines, "Prices: "+strings.Join(prices, ", "))
	}
	if colors := optionValues(product, colorOptionNames, 1); len(colors) > 0 {
		lines = append(lines, "Colors: "+strings.Join(colors, ", "))
	}
	if sizes := optionValues(product, sizeOptionNames, 2); len(sizes) > 0 {
		lines = append(lines, "Sizes: "+strings.Join(sizes, ", "))
	}

	total := 0
	for _, v := range product.Variants {
		if v.InventoryQuantity > 0 {
			total += v.InventoryQuantity
		}
	}
	lines = append(lines, fmt.Sprintf("Total inventory: %d units", total))

	return truncate(strings.Join(lines, "\n"), maxContextRunes)
}

// OrderContext states the fulfillment status of an order.
func OrderContext(order commerce.Order) string {
	name := strings.TrimSpace(order.Name)
	if name == "" {
		name = strconv.FormatInt(order.ID, 10)
	}
	return fmt.Sprintf("Your order '%s' is currently '%s'.", name, order.Fulfillment())
}

// FormatPrice renders an admin API amount such as "20.00" as "$20".
func FormatPrice(amount string) string {
	amount = strings.TrimSpace(amount)
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return amount
	}
	if value == float64(int64(value)) {
		return fmt.Sprintf("%s%d", CurrencySymbol, int64(value))
	}
	return fmt.Sprintf("%s%.2f", CurrencySymbol, value)
}

func distinctPrices(variants []commerce.Variant) []string {
	seen := make(map[string]struct{}, len(variants))
	prices := make([]string, 0, len(variants))
	for _, v := range variants {
		if strings.TrimSpace(v.Price) == "" {
			continue
		}
		price := FormatPrice(v.Price)
		if _, ok := seen[price]; ok {
			continue
		}
		seen[price] = struct{}{}
		prices = append(prices, price)
	}
	return prices
}

func variantBreakdown(variants []commerce.Variant) string {
	lines := make([]string, 0, len(variants))
	for i, v := range variants {
		lines = append(lines, fmt.Sprintf("%s: %s, %d in stock", variantLabel(v, i), FormatPrice(v.Price), v.InventoryQuantity))
	}
	return strings.Join(lines, "\n")
}

func variantLabel(v commerce.Variant, index int) string {
	if values := v.OptionValues(); len(values) > 0 {
		return strings.Join(values, variantSeparator)
	}
	if title := strings.TrimSpace(v.Title); title != "" {
		return title
	}
	return fmt.Sprintf("Variant %d", index+1)
}

// optionValues returns the distinct values of the option named like one of names,
// falling back to fallbackPosition when the product declares no such option.
func optionValues(product commerce.Product, names []string, fallbackPosition int) []string {
	position := fallbackPosition
	if len(product.Options) > 0 {
		position = 0
		for _, opt := range product.Options {
			if matchesAny(opt.Name, names) {
				position = opt.Position
				break
			}
		}
		if position == 0 {
			return nil
		}
	}

	seen := make(map[string]struct{})
	values := make([]string, 0, len(product.Variants))
	for _, v := range product.Variants {
		value := strings.TrimSpace(v.OptionValue(position))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}

func renderOptionSet(label string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s.", label, strings.Join(values, ", "))
}

func matchesAny(name string, candidates []string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
