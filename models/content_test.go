package models

import "testing"

func TestParseContentText(t *testing.T) {
	content := ParseContent("hello")
	if content.Kind != ContentText {
		t.Fatalf("expected text content, got kind %d", content.Kind)
	}
	if content.Text != "hello" {
		t.Fatalf("unexpected text: %q", content.Text)
	}
	if content.URL != "" {
		t.Fatalf("text content should carry no URL, got %q", content.URL)
	}
}

func TestParseContentImage(t *testing.T) {
	content := ParseContent(FormatImage("https://example.test/images/a.png"))
	if content.Kind != ContentImage {
		t.Fatalf("expected image content, got kind %d", content.Kind)
	}
	if content.URL != "https://example.test/images/a.png" {
		t.Fatalf("unexpected URL: %q", content.URL)
	}
}

func TestParseContentPrefixOnlyAtStart(t *testing.T) {
	content := ParseContent("see [IMG]https://example.test/a.png")
	if content.Kind != ContentText {
		t.Fatalf("prefix inside text should not classify as image")
	}
}
