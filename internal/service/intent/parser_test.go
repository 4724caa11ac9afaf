package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/botify/storebot/backend/internal/model/intent"
)

func TestParseFullOutput(t *testing.T) {
	out := "intent: product_info\nproduct_name: Classic Tee\norder_id: <if applicable>\nemail: <if applicable>\ninfo: price\n"

	got := Parse(out)
	assert.Equal(t, intent.Analysis{
		Intent:      intent.ProductInfo,
		ProductName: "Classic Tee",
		Info:        intent.InfoPrice,
	}, got)
}

func TestParseWithoutIntentLineIsGeneric(t *testing.T) {
	for _, out := range []string{
		"",
		"I am not sure what the customer wants.",
		"Intent is product_info",
		"- intent: product_info",
		"the intent: order_status",
	} {
		assert.Equal(t, intent.Default(), Parse(out), "output %q", out)
	}
}

func TestParseLastOccurrenceWins(t *testing.T) {
	out := "intent: generic\nproduct_name: Mug\nintent: order_status\norder_id: 1001\norder_id: #1234"

	got := Parse(out)
	assert.Equal(t, intent.OrderStatus, got.Intent)
	assert.Equal(t, "1234", got.OrderID)
	assert.Equal(t, "Mug", got.ProductName)
}

func TestParseLaterPlaceholderClearsEarlierValue(t *testing.T) {
	got := Parse("product_name: Hoodie\nproduct_name: N/A")
	assert.Empty(t, got.ProductName)
}

func TestParseValueKeepsTextAfterFirstColon(t *testing.T) {
	got := Parse("intent: product_info\nproduct_name:  Tee: Limited Edition  ")
	assert.Equal(t, "Tee: Limited Edition", got.ProductName)
}

func TestParsePlaceholdersAreAbsent(t *testing.T) {
	for _, v := range []string{"", "<if applicable>", "None", "null", "N/A", "\"\"", "[unknown]", "nil", "Not Provided", "-"} {
		got := Parse("intent: order_status\nemail: " + v)
		assert.Empty(t, got.Email, "value %q", v)
	}
}

func TestParseUnknownValues(t *testing.T) {
	got := Parse("intent: refund_request\ninfo: weight\nproduct_name: Socks")
	assert.Equal(t, intent.Generic, got.Intent)
	assert.Equal(t, intent.InfoNone, got.Info)
	assert.Equal(t, "Socks", got.ProductName)
}

func TestParseIsCaseAndWhitespaceTolerant(t *testing.T) {
	got := Parse("  Intent: Return_Policy\r\nINFO: Stock By Variant\r\n\tEmail: \"jane@example.com\"")
	assert.Equal(t, intent.ReturnPolicy, got.Intent)
	assert.Equal(t, intent.InfoStockByVariant, got.Info)
	assert.Equal(t, "jane@example.com", got.Email)

	got = Parse("intent: Product Info\ninfo: stock-by-variant")
	assert.Equal(t, intent.ProductInfo, got.Intent)
	assert.Equal(t, intent.InfoStockByVariant, got.Info)

	got = Parse("intent: order status")
	assert.Equal(t, intent.OrderStatus, got.Intent)
}

func TestParseInfoColourSpelling(t *testing.T) {
	got := Parse("intent: product_info\ninfo: colour")
	assert.Equal(t, intent.InfoColor, got.Info)
}
