package notice

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMessage builds the outbound message body for one item.
// Field sets per category follow the feed's display contract.
func FormatMessage(d Descriptor, it Item) string {
	switch d.Category {
	case CategoryPre:
		return fmt.Sprintf(
			"[%s]\n"+
				"■ 사업명: %s\n"+
				"■ 등록번호: %s\n"+
				"■ 수요기관: %s\n"+
				"■ 배정예산금액: %s원\n"+
				"■ 접수일시: %s\n"+
				"■ 의견등록마감일시: %s",
			d.Label,
			it.Str("prdctClsfcNoNm"),
			it.Str("bfSpecRgstNo"),
			it.Str("rlDminsttNm"),
			FormatWon(it.Amount("asignBdgtAmt")),
			it.Str("rcptDt"),
			it.Str("opninRgstClseDt"),
		)
	case CategoryAward:
		return fmt.Sprintf(
			"[%s]\n"+
				"■ 공고명: %s\n"+
				"■ 공고번호: %s\n"+
				"■ 최종낙찰업체: %s\n"+
				"■ 낙찰일자: %s",
			d.Label,
			it.Str("bidNtceNm"),
			it.Str("bidNtceNo"),
			it.Str("bidwinnrNm"),
			it.Str("fnlSucsfDate"),
		)
	default: // bid
		return fmt.Sprintf(
			"[%s]\n"+
				"■ 공고명: %s\n"+
				"■ 공고번호: %s\n"+
				"■ 수요기관: %s\n"+
				"■ 공고일시: %s\n"+
				"■ 입찰마감일시: %s\n"+
				"■ 추정가격: %s원\n"+
				"■ 상세URL: %s",
			d.Label,
			it.Str("bidNtceNm"),
			it.Str("bidNtceNo"),
			it.Str("dminsttNm"),
			it.Str("bidNtceDt"),
			it.Str("bidClseDt"),
			FormatWon(it.Amount("presmptPrce")),
			it.Str("bidNtceDtlUrl"),
		)
	}
}

// FormatLimitWarning builds the single summary message sent in place of
// per-item messages when a query returns too many new items.
func FormatLimitWarning(desc string, count int) string {
	return fmt.Sprintf(
		"[공고 알림]\n"+
			"%s 새 공고 %d건 조회\n"+
			"결과가 많아 발송 제한됩니다.\n"+
			"조회조건을 더 구체적으로 설정해주세요.",
		desc, count,
	)
}

// SearchDescription renders a condition's active filters for logs and the
// limit warning, e.g. 키워드='도로' + 수요기관='서울특별시'.
func SearchDescription(c Condition) string {
	var parts []string
	if c.Keyword != "" {
		parts = append(parts, fmt.Sprintf("키워드='%s'", c.Keyword))
	}
	if c.NoticeOrg != "" {
		parts = append(parts, fmt.Sprintf("공고기관='%s'", c.NoticeOrg))
	}
	if c.DemandOrg != "" {
		parts = append(parts, fmt.Sprintf("수요기관='%s'", c.DemandOrg))
	}
	if c.NoticeNumber != "" {
		parts = append(parts, fmt.Sprintf("공고번호='%s'", c.NoticeNumber))
	}
	return strings.Join(parts, " + ")
}

// CompactText prefixes a name, truncating the name to 30 characters so the
// result fits a single short SMS segment.
func CompactText(prefix, name string) string {
	const maxLen = 30
	r := []rune(name)
	if len(r) > maxLen {
		name = string(r[:maxLen-3]) + "..."
	}
	return prefix + name
}

// FormatWon renders an amount with thousands separators.
func FormatWon(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		var b strings.Builder
		lead := len(s) % 3
		if lead > 0 {
			b.WriteString(s[:lead])
		}
		for i := lead; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}
