package extract

import (
	"sort"
	"strings"
	"unicode"

	"github.com/BailinYe/resume-modifier/internal/model"
)

// 关键词统计忽略的常见词
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "are": true, "was": true, "were": true,
	"have": true, "has": true, "had": true, "not": true, "but": true,
	"you": true, "your": true, "our": true, "their": true, "its": true,
	"can": true, "will": true, "all": true, "any": true, "per": true,
}

// extractKeywords 按词频取前 max 个关键词
func extractKeywords(text string, max int) model.StringList {
	counts := make(map[string]int)
	for _, word := range splitWords(text) {
		word = strings.ToLower(word)
		if len(word) < 3 || stopwords[word] {
			continue
		}
		counts[word]++
	}
	if len(counts) == 0 {
		return nil
	}

	type wordCount struct {
		word  string
		count int
	}
	ranked := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, wordCount{w, c})
	}
	// 频次相同时按字典序，保证结果确定
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	keywords := make(model.StringList, len(ranked))
	for i, wc := range ranked {
		keywords[i] = wc.word
	}
	return keywords
}

// splitWords 按非字母数字切词
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// detectLanguage 粗粒度语言判断：CJK 字符占比超过两成记为中文
func detectLanguage(text string) string {
	if text == "" {
		return ""
	}
	var letters, cjk int
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			cjk++
			letters++
		} else if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters == 0 {
		return ""
	}
	if float64(cjk)/float64(letters) > 0.2 {
		return "zh"
	}
	return "en"
}
