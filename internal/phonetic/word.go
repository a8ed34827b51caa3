package phonetic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Word is the phonetic breakdown of one word of the input text
type Word struct {
	Word        string `json:"word"`
	IPA         string `json:"ipa"`
	LinksToNext bool   `json:"linksToNext,omitempty"`
	LinkingType string `json:"linkingType,omitempty"`
	IsReduced   bool   `json:"isReduced,omitempty"`
}

// Parse decodes a transcription response. It accepts a bare JSON array or an
// object carrying a "words" array, optionally wrapped in a markdown code
// fence. Anything it cannot decode yields an empty slice.
func Parse(raw []byte) []Word {
	body := stripFence(raw)
	if len(body) == 0 {
		return []Word{}
	}

	var words []Word
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &words); err != nil {
			return []Word{}
		}
	case '{':
		var wrapped struct {
			Words []Word `json:"words"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return []Word{}
		}
		words = wrapped.Words
	default:
		return []Word{}
	}

	// Entries without a word carry nothing to render
	out := make([]Word, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Word) == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

// stripFence removes a surrounding ```json ... ``` block if present
func stripFence(raw []byte) []byte {
	body := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}
	body = bytes.TrimPrefix(body, []byte("```"))
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
	return bytes.TrimSpace(body)
}

// Format renders words as a single line: each word followed by its IPA in
// slashes, a linking tie between linked words and a marker on reduced ones.
func Format(words []Word) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			if words[i-1].LinksToNext {
				b.WriteString(" ‿ ")
			} else {
				b.WriteString("  ")
			}
		}
		fmt.Fprintf(&b, "%s /%s/", w.Word, strings.Trim(w.IPA, "/[]"))
		if w.IsReduced {
			b.WriteString("°")
		}
	}
	return b.String()
}

// Legend explains the markers used by Format
const Legend = "‿ linked to next word   ° reduced (weak form)"

// FormatTable renders one word per line for terminal output
func FormatTable(words []Word) string {
	var b strings.Builder
	for _, w := range words {
		fmt.Fprintf(&b, "%-16s /%s/", w.Word, strings.Trim(w.IPA, "/[]"))
		if w.IsReduced {
			b.WriteString("  reduced")
		}
		if w.LinksToNext {
			b.WriteString("  ‿")
			if w.LinkingType != "" {
				fmt.Fprintf(&b, " %s", w.LinkingType)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
