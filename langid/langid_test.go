package langid

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain words", "bonjour tout le monde", "bonjour tout le monde"},
		{"keeps accented words intact", "phrase française écrite entièrement", "phrase française écrite entièrement"},
		{"keeps umlauts", "schöne grüße aus münchen", "schöne grüße aus münchen"},
		{"strips urls", "lees meer op https://example.com/nl/page?id=3 vandaag", "lees meer op vandaag"},
		{"strips www urls", "zie www.example.be voor info", "zie voor info"},
		{"strips emails", "contact info@example.com voor vragen", "contact voor vragen"},
		{"drops digits", "er zijn 42 redenen", "er zijn redenen"},
		{"collapses punctuation", "hello, world! how are you?", "hello world how are you"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanTextLongURL(t *testing.T) {
	// The URL pattern consumes at most 1000 characters per match; a longer
	// URL loses its tail to the word filter but never breaks cleaning.
	long := "https://example.com/" + strings.Repeat("a", 2000)
	got := CleanText("zie " + long + " hier")
	if !strings.HasPrefix(got, "zie ") || !strings.HasSuffix(got, " hier") {
		t.Errorf("CleanText(long url) = %q, want surrounding words kept", got)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"one two three", 3},
		{"visit https://example.com now", 2},
		{"ceci est une phrase française de huit mots", 8},
		{"", 0},
		{"123 456", 0},
	}
	for _, tt := range tests {
		if got := CountWords(tt.in); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownCode(t *testing.T) {
	if _, err := New([]string{"xx"}); err == nil {
		t.Fatal("expected error for unknown language code")
	}
}

func TestPredict(t *testing.T) {
	id, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	code, ok := id.Predict("ceci est un paragraphe écrit entièrement en français pour le test")
	if !ok || code != "fr" {
		t.Errorf("Predict(french) = %q, %v; want fr, true", code, ok)
	}

	code, ok = id.Predict("dit is een volledig nederlandstalige paragraaf voor deze test")
	if !ok || code != "nl" {
		t.Errorf("Predict(dutch) = %q, %v; want nl, true", code, ok)
	}

	if _, ok := id.Predict(""); ok {
		t.Error("Predict(empty) returned a verdict, want none")
	}
}
