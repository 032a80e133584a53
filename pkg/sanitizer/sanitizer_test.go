package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Aurora  ", "Aurora"},
		{"multiple spaces between words", "Board    Room", "Board Room"},
		{"tabs and newlines", "Board\t\nRoom", "Board Room"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Co™ ", "Café & Co™"},
		{"hebrew characters", " חדר ישיבות ", "חדר ישיבות"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "R1", "R1"},
		{"keeps case", "Room-A", "Room-A"},
		{"surrounding space", "  R1\t", "R1"},
		{"control characters", "R\x001\x7f", "R1"},
		{"inner space kept", "R 1", "R 1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeID(tt.input); got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeRoomName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", " Board \n Room ", "Board Room"},
		{"drops bell", "Board\aRoom", "BoardRoom"},
		{"tab becomes space", "Board\tRoom", "Board Room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeRoomName(tt.input); got != tt.want {
				t.Errorf("SanitizeRoomName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizersAreIdempotent(t *testing.T) {
	inputs := []string{"  R1 ", "Board \t Room", "\x00x", ""}
	for _, in := range inputs {
		once := SanitizeRoomName(in)
		if twice := SanitizeRoomName(once); twice != once {
			t.Errorf("SanitizeRoomName not idempotent for %q: %q then %q", in, once, twice)
		}
		onceID := SanitizeID(in)
		if twiceID := SanitizeID(onceID); twiceID != onceID {
			t.Errorf("SanitizeID not idempotent for %q: %q then %q", in, onceID, twiceID)
		}
	}
}
