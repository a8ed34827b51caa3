package phonetic

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	hello := []Word{{Word: "Hello", IPA: "həˈloʊ"}}

	tests := []struct {
		name string
		raw  string
		want []Word
	}{
		{
			name: "bare array",
			raw:  `[{"word":"Hello","ipa":"həˈloʊ","linksToNext":false,"isReduced":false}]`,
			want: hello,
		},
		{
			name: "wrapped object",
			raw:  `{"words":[{"word":"Hello","ipa":"həˈloʊ"}]}`,
			want: hello,
		},
		{
			name: "code fence",
			raw:  "```json\n[{\"word\":\"Hello\",\"ipa\":\"həˈloʊ\"}]\n```",
			want: hello,
		},
		{
			name: "linking fields",
			raw:  `[{"word":"turn","ipa":"tɜːrn","linksToNext":true,"linkingType":"consonant-vowel"},{"word":"off","ipa":"ɒf"}]`,
			want: []Word{
				{Word: "turn", IPA: "tɜːrn", LinksToNext: true, LinkingType: "consonant-vowel"},
				{Word: "off", IPA: "ɒf"},
			},
		},
		{name: "not json", raw: "Sorry, I cannot help with that.", want: []Word{}},
		{name: "broken json", raw: `[{"word":"Hello"`, want: []Word{}},
		{name: "empty", raw: "", want: []Word{}},
		{name: "blank words dropped", raw: `[{"word":" ","ipa":"x"},{"word":"a","ipa":"ə","isReduced":true}]`,
			want: []Word{{Word: "a", IPA: "ə", IsReduced: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse([]byte(tt.raw))
			if got == nil {
				t.Fatal("Parse returned nil, want non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	words := []Word{
		{Word: "turn", IPA: "/tɜːrn/", LinksToNext: true},
		{Word: "it", IPA: "ɪt"},
		{Word: "to", IPA: "tə", IsReduced: true},
	}

	got := Format(words)
	want := "turn /tɜːrn/ ‿ it /ɪt/  to /tə/°"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}
}

func TestFormatTable(t *testing.T) {
	words := []Word{
		{Word: "an", IPA: "ən", IsReduced: true, LinksToNext: true, LinkingType: "consonant-vowel"},
		{Word: "apple", IPA: "ˈæpəl"},
	}

	lines := strings.Split(strings.TrimSuffix(FormatTable(words), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "reduced") || !strings.Contains(lines[0], "consonant-vowel") {
		t.Errorf("First line missing markers: %q", lines[0])
	}
	if strings.Contains(lines[1], "‿") {
		t.Errorf("Second line should not be linked: %q", lines[1])
	}
}
