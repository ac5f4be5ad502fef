package language

import "testing"

func TestDetectEnglish(t *testing.T) {
	got := Detect("What is the meaning of the Divine Liturgy?")
	if got != English {
		t.Fatalf("expected en, got %s", got)
	}
}

func TestDetectAmharic(t *testing.T) {
	got := Detect("ጥምቀት ምንድን ነው?")
	if got != Amharic {
		t.Fatalf("expected am, got %s", got)
	}
}

func TestDetectTigrigna(t *testing.T) {
	got := Detect("ጥምቀት እንታይ እዩ?")
	if got != Tigrigna {
		t.Fatalf("expected ti, got %s", got)
	}
}

func TestDetectOromo(t *testing.T) {
	got := Detect("Cuuphaan maal jechuudha? Akkam godhama?")
	if got != Oromo {
		t.Fatalf("expected om, got %s", got)
	}
}

func TestDetectEthiopicTieFallsToAmharic(t *testing.T) {
	// Ethiopic script with no language specific tokens.
	got := Detect("ጥምቀት")
	if got != Amharic {
		t.Fatalf("expected am on ambiguous Ethiopic text, got %s", got)
	}
}

func TestDetectUnsupported(t *testing.T) {
	cases := []string{
		"Qu'est-ce que le baptême?",
		"ما هو التعميد؟",
		"1234 5678",
	}
	for _, text := range cases {
		if got := Detect(text); got != Unsupported {
			t.Errorf("Detect(%q) = %s, expected unsupported", text, got)
		}
	}
}

func TestDetectWithHintOverrides(t *testing.T) {
	// A valid hint wins over detection.
	if got := DetectWithHint("short", "am"); got != Amharic {
		t.Fatalf("expected hint am to win, got %s", got)
	}
	// Subtags are stripped.
	if got := DetectWithHint("short", "om-ET"); got != Oromo {
		t.Fatalf("expected om from om-ET, got %s", got)
	}
}

func TestDetectWithHintInvalidFallsBack(t *testing.T) {
	got := DetectWithHint("What is fasting for?", "fr")
	if got != English {
		t.Fatalf("expected detection fallback to en, got %s", got)
	}
}

func TestSupported(t *testing.T) {
	for _, lang := range []Language{English, Amharic, Tigrigna, Oromo} {
		if !Supported(lang) {
			t.Errorf("expected %s to be supported", lang)
		}
	}
	if Supported("fr") {
		t.Error("fr must not be supported")
	}
	if Name(Unsupported) == "" {
		t.Fatal("unsupported language needs a display name")
	}
}
