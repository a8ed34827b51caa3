package audio

import (
	"fmt"
	"strings"
)

// ValidateText validates that the input text has something to speak
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	hasLetter := false
	for _, r := range text {
		if isLetter(r) {
			hasLetter = true
			break
		}
	}

	if !hasLetter {
		return fmt.Errorf("text must contain letters")
	}

	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f
}
