package ai

import (
	"strings"
	"testing"
)

func TestSystemInstructionNativeVariant(t *testing.T) {
	got := SystemInstruction("es")
	if !strings.Contains(got, "Responde siempre en español.") {
		t.Fatalf("expected spanish instruction, got %q", got)
	}
}

func TestSystemInstructionFallsBackToEnglishWithLanguageName(t *testing.T) {
	got := SystemInstruction("ja")
	if !strings.HasPrefix(got, "You are a friendly customer support assistant") {
		t.Fatalf("expected english base, got %q", got)
	}
	if !strings.HasSuffix(got, "Always reply in Japanese.") {
		t.Fatalf("expected reply-in-japanese suffix, got %q", got)
	}
	if strings.Contains(got, "English") {
		t.Fatalf("fallback must not ask for English: %q", got)
	}
}

func TestEveryVariantCarriesAllRules(t *testing.T) {
	for lang, text := range groundingInstructions {
		if len(strings.Split(text, ". ")) < 5 {
			t.Fatalf("%s instruction looks truncated: %q", lang, text)
		}
	}
}
