package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codeberg.org/snonux/accentcoach/internal/voice"
)

func TestReadBatchFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		want        []Entry
		wantErr     bool
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace",
			fileContent: "   \n\t\r\n   ",
			want:        nil,
		},
		{
			name: "plain sentences",
			fileContent: `Turn it off.
What do you want to do?`,
			want: []Entry{
				{Text: "Turn it off.", Line: 1},
				{Text: "What do you want to do?", Line: 2},
			},
		},
		{
			name: "comments and blank lines",
			fileContent: `# warm up

  Pick it up  
# done`,
			want: []Entry{
				{Text: "Pick it up", Line: 3},
			},
		},
		{
			name:        "windows line endings",
			fileContent: "Hello world\r\nGood morning",
			want: []Entry{
				{Text: "Hello world", Line: 1},
				{Text: "Good morning", Line: 2},
			},
		},
		{
			name:        "voice override",
			fileContent: `Turn it off | India, Serious, 75`,
			want: []Entry{
				{Text: "Turn it off", Line: 1, Voice: &Override{Accent: voice.AccentIndia, Tone: voice.ToneSerious, Speed: 75}},
			},
		},
		{
			name:        "partial override any order",
			fileContent: `Look at it | serious australia`,
			want: []Entry{
				{Text: "Look at it", Line: 1, Voice: &Override{Accent: voice.AccentAustralia, Tone: voice.ToneSerious}},
			},
		},
		{
			name:        "speed only",
			fileContent: `Look at it | 125%`,
			want: []Entry{
				{Text: "Look at it", Line: 1, Voice: &Override{Speed: 125}},
			},
		},
		{
			name:        "empty override",
			fileContent: `Look at it |`,
			want: []Entry{
				{Text: "Look at it", Line: 1},
			},
		},
		{
			name:        "unknown setting",
			fileContent: `Look at it | Mars`,
			wantErr:     true,
		},
		{
			name:        "override without sentence",
			fileContent: `| India`,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temp file
			tmpFile := filepath.Join(t.TempDir(), "test.txt")
			if err := os.WriteFile(tmpFile, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			got, err := ReadBatchFile(tmpFile)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadBatchFile() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadBatchFile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadBatchFile_FileNotFound(t *testing.T) {
	_, err := ReadBatchFile("/nonexistent/file.txt")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestOverrideApply(t *testing.T) {
	base := voice.DefaultSettings()

	var none *Override
	if none.Apply(base) != base {
		t.Error("nil override should keep the base settings")
	}

	got := (&Override{Tone: voice.ToneCheerful}).Apply(base)
	want := voice.Settings{Accent: base.Accent, Tone: voice.ToneCheerful, Speed: base.Speed}
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"unix line endings", "line1\nline2\nline3", []string{"line1", "line2", "line3"}},
		{"windows line endings", "line1\r\nline2\r\nline3", []string{"line1", "line2", "line3"}},
		{"mixed line endings", "line1\nline2\r\nline3", []string{"line1", "line2", "line3"}},
		{"empty string", "", nil},
		{"single line no ending", "single line", []string{"single line"}},
		{"trailing newline", "line1\nline2\n", []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLines(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitLines() = %v, want %v", got, tt.want)
			}
		})
	}
}
