package commerce

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText flattens product description HTML into single-spaced text.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var builder strings.Builder
	skip := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(builder.String()), " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
			builder.WriteByte(' ')
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			builder.WriteByte(' ')
		case html.SelfClosingTagToken:
			builder.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				builder.Write(tokenizer.Text())
			}
		}
	}
}
