package notice

import (
	"fmt"
	"strings"
)

// Category identifies one of the three procurement notice feeds.
type Category string

const (
	CategoryBid   Category = "bid"
	CategoryPre   Category = "pre"
	CategoryAward Category = "award"
)

// Categories returns all categories in processing order.
func Categories() []Category {
	return []Category{CategoryBid, CategoryPre, CategoryAward}
}

// ParseCategory normalizes a user-supplied category string.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryBid:
		return CategoryBid, nil
	case CategoryPre:
		return CategoryPre, nil
	case CategoryAward:
		return CategoryAward, nil
	default:
		return "", fmt.Errorf("unknown notice category %q", s)
	}
}

// Descriptor carries everything category-specific: the feed endpoint, the
// item identity field, how condition fields map to query parameters, and
// message labels. The three polling paths differ only by this data.
type Descriptor struct {
	Category Category

	// Label heads every outbound message for this category.
	Label string

	// Path is the feed endpoint, relative to the configured base URL.
	Path string

	// IDField is the response field that identifies an item for dedup.
	IDField string

	// LedgerKey is the per-user set name in the persisted ledger.
	LedgerKey string

	// KeywordParam is the query parameter a keyword filter maps to.
	KeywordParam string

	// IndustryCode restricts the query to an industry when non-empty.
	IndustryCode string

	// OrgFilters reports whether notice_org/demand_org filters apply.
	OrgFilters bool

	// NumberFilter reports whether a notice_number filter applies.
	NumberFilter bool
}

var descriptors = map[Category]Descriptor{
	CategoryBid: {
		Category:     CategoryBid,
		Label:        "입찰 공고 알림",
		Path:         "/ad/BidPublicInfoService/getBidPblancListInfoServcPPSSrch",
		IDField:      "bidNtceNo",
		LedgerKey:    "bid_notices",
		KeywordParam: "bidNtceNm",
		IndustryCode: "1468",
		OrgFilters:   true,
	},
	CategoryPre: {
		Category:     CategoryPre,
		Label:        "사전 공고 알림",
		Path:         "/ao/HrcspSsstndrdInfoService/getPublicPrcureThngInfoServcPPSSrch",
		IDField:      "bfSpecRgstNo",
		LedgerKey:    "pre_notices",
		KeywordParam: "prdctClsfcNoNm",
		OrgFilters:   true,
	},
	CategoryAward: {
		Category:     CategoryAward,
		Label:        "입찰 결과 알림",
		Path:         "/as/ScsbidInfoService/getScsbidListSttusServcPPSSrch",
		IDField:      "bidNtceNo",
		LedgerKey:    "award_notices",
		KeywordParam: "bidNtceNm",
		IndustryCode: "1468",
		NumberFilter: true,
	},
}

// Describe returns the descriptor for a category.
func Describe(c Category) (Descriptor, bool) {
	d, ok := descriptors[c]
	return d, ok
}

// MustDescribe is Describe for the fixed, known categories.
func MustDescribe(c Category) Descriptor {
	d, ok := descriptors[c]
	if !ok {
		panic(fmt.Sprintf("notice: no descriptor for category %q", c))
	}
	return d
}
