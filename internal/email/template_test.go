package email

import (
	"strings"
	"testing"
)

func TestRenderResetEmail(t *testing.T) {
	body, err := RenderResetEmail("https://app.example.com/reset?token=abc123")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(body)

	// The link appears behind the button and as the copyable fallback.
	if got := strings.Count(html, "https://app.example.com/reset?token=abc123"); got != 2 {
		t.Fatalf("expected the link twice, got %d", got)
	}
	if !strings.Contains(html, "Reset Your Password") {
		t.Fatalf("missing heading")
	}
	if !strings.Contains(html, "expire in 60 minutes") {
		t.Fatalf("missing expiry notice")
	}
}

func TestRenderResetEmailEscapes(t *testing.T) {
	body, err := RenderResetEmail(`https://x.example.com/?a="<script>`)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(body), "<script>") {
		t.Fatalf("link must be HTML-escaped")
	}
}
