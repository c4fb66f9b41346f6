package util

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var specialCharRegex = regexp.MustCompile(`[^\w\s#@]`)
var emojiRegex = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}\x{2600}-\x{26FF}]`)

var positiveWords = []string{"love", "great", "amazing", "awesome", "happy", "excited", "best"}
var negativeWords = []string{"bad", "hate", "worst", "terrible", "sad", "disappointed"}

var callToActionKeywords = []string{
	"click", "tap", "swipe", "link", "bio", "check", "follow", "share",
	"comment", "like", "save", "dm", "message", "subscribe",
}

// SanitizeText 去掉 HTML 标签后只保留字母数字、空白与 #@
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	if strings.Contains(text, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			text = doc.Text()
		}
	}
	return strings.TrimSpace(specialCharRegex.ReplaceAllString(text, ""))
}

// CountEmojis 统计常用区段内的 emoji 数量
func CountEmojis(text string) int {
	return len(emojiRegex.FindAllString(text, -1))
}

// HasCallToAction 文案是否包含行动号召词
func HasCallToAction(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range callToActionKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// SentimentScore 基于词表的朴素情感打分，emoji 记 0.5 分
func SentimentScore(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '_')
	})

	var score float64
	for _, word := range words {
		if containsWord(positiveWords, word) {
			score++
		}
		if containsWord(negativeWords, word) {
			score--
		}
	}
	return score + float64(CountEmojis(text))*0.5
}

func containsWord(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}

// SentimentLabel 按情感得分符号归为 positive / negative / neutral
func SentimentLabel(text string) string {
	score := SentimentScore(text)
	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}
