package extract

import (
	"reflect"
	"strings"
	"testing"
)

// ========== 关键词与语言检测测试 ==========

func TestExtractKeywordsByFrequency(t *testing.T) {
	text := "golang golang golang kubernetes kubernetes docker"

	got := extractKeywords(text, 10)
	want := []string{"golang", "kubernetes", "docker"}
	if !reflect.DeepEqual([]string(got), want) {
		t.Errorf("extractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsSkipsStopwordsAndShortWords(t *testing.T) {
	text := "the and for with go it at engineering engineering"

	got := extractKeywords(text, 10)
	want := []string{"engineering"}
	if !reflect.DeepEqual([]string(got), want) {
		t.Errorf("extractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsTiesBreakLexicographically(t *testing.T) {
	text := "zebra apple mango"

	got := extractKeywords(text, 10)
	want := []string{"apple", "mango", "zebra"}
	if !reflect.DeepEqual([]string(got), want) {
		t.Errorf("extractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsRespectsLimit(t *testing.T) {
	words := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	got := extractKeywords(strings.Join(words, " "), 3)
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestExtractKeywordsEmptyText(t *testing.T) {
	if got := extractKeywords("", 10); got != nil {
		t.Errorf("extractKeywords(\"\") = %v, want nil", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "Software engineer with ten years of experience", "en"},
		{"chinese", "十年经验的软件工程师，精通分布式系统", "zh"},
		{"mixed mostly english", "Worked at 阿里 for two years as a backend engineer on infra", "en"},
		{"empty", "", ""},
		{"digits only", "12345 67890", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectLanguage(tt.text); got != tt.want {
				t.Errorf("detectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
