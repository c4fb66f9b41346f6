package util

import (
	"regexp"
	"strconv"
	"strings"
)

var tagRegex = regexp.MustCompile(`#(\S+)`)
var mentionRegex = regexp.MustCompile(`@(\w+)`)

// ExtractTags 只负责提取去重后的标签列表
func ExtractTags(rawContent string) []string {
	matches := tagRegex.FindAllStringSubmatch(rawContent, -1)

	tagSet := make(map[string]struct{})
	var tags []string

	for _, m := range matches {
		if len(m) > 1 {
			tagName := m[1]

			tagName = strings.Trim(tagName, ".,，。!?！？")

			if tagName != "" {
				if _, exists := tagSet[tagName]; !exists {
					tagSet[tagName] = struct{}{}
					tags = append(tags, tagName)
				}
			}
		}
	}

	return tags
}

// ExtractMentions 提取去重后的 @ 提及列表
func ExtractMentions(rawContent string) []string {
	matches := mentionRegex.FindAllStringSubmatch(rawContent, -1)

	seen := make(map[string]struct{})
	var mentions []string
	for _, m := range matches {
		if len(m) > 1 {
			if _, exists := seen[m[1]]; !exists {
				seen[m[1]] = struct{}{}
				mentions = append(mentions, m[1])
			}
		}
	}
	return mentions
}

// StrSliceToUInt64Slice 字符串切片转 uint64 切片，非法项跳过
func StrSliceToUInt64Slice(strs []string) []uint64 {
	result := make([]uint64, 0, len(strs))
	for _, s := range strs {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			continue
		}
		result = append(result, v)
	}
	return result
}

// PtrInt 用于将 int 转换为 *int
func PtrInt(i int) *int {
	return &i
}

// PtrInt64 用于将 int64 转换为 *int64
func PtrInt64(i int64) *int64 {
	return &i
}
