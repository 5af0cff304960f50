package util

import "strings"

const (
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
)

// ApplyKakaoSeeMorePadding는 instruction 뒤에 제로폭 문자를 채워
// 본문이 '전체보기' 아래로 접히게 한다.
func ApplyKakaoSeeMorePadding(text, instruction string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	header := strings.TrimSpace(instruction)
	body := StripLeadingHeader(text, header)

	var b strings.Builder
	b.Grow(len(body) + len(header) + KakaoSeeMorePadding*len(KakaoZeroWidthSpace) + 1)
	b.WriteString(header)
	b.WriteString(strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding))
	if !strings.HasPrefix(body, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(body)
	return b.String()
}

// StripLeadingHeader는 첫 줄의 중복 헤더와 뒤따르는 빈 줄을 제거한다.
func StripLeadingHeader(text, header string) string {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(header) == "" {
		return text
	}
	if !strings.HasPrefix(text, header) {
		return text
	}
	rest := strings.TrimPrefix(text, header)
	for _, sep := range []string{"\r\n\r\n", "\n\n", "\r\n", "\n"} {
		if strings.HasPrefix(rest, sep) {
			return strings.TrimPrefix(rest, sep)
		}
	}
	return rest
}

// ShortID는 uuid 같은 긴 식별자의 앞 8자를 돌려준다.
func ShortID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}

// SanitizeMention strips the leading @ of a chat mention.
func SanitizeMention(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "@"))
}
