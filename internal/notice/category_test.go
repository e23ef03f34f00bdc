package notice

import "testing"

func TestParseCategory(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"bid", "BID", " Pre ", "award"} {
		if _, err := ParseCategory(s); err != nil {
			t.Errorf("ParseCategory(%q) error: %v", s, err)
		}
	}
	if _, err := ParseCategory("rfp"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestDescriptorsComplete(t *testing.T) {
	t.Parallel()
	for _, cat := range Categories() {
		d, ok := Describe(cat)
		if !ok {
			t.Fatalf("no descriptor for %q", cat)
		}
		if d.Category != cat || d.Path == "" || d.IDField == "" || d.LedgerKey == "" || d.KeywordParam == "" || d.Label == "" {
			t.Fatalf("incomplete descriptor for %q: %+v", cat, d)
		}
	}
}

func TestDescriptorFilterSupport(t *testing.T) {
	t.Parallel()
	bid := MustDescribe(CategoryBid)
	pre := MustDescribe(CategoryPre)
	award := MustDescribe(CategoryAward)

	if !bid.OrgFilters || bid.NumberFilter {
		t.Fatalf("bid filters: %+v", bid)
	}
	if !pre.OrgFilters || pre.NumberFilter || pre.IndustryCode != "" {
		t.Fatalf("pre filters: %+v", pre)
	}
	if award.OrgFilters || !award.NumberFilter {
		t.Fatalf("award filters: %+v", award)
	}
}

func TestConditionHasFilter(t *testing.T) {
	t.Parallel()
	bid := MustDescribe(CategoryBid)
	award := MustDescribe(CategoryAward)

	tests := []struct {
		name string
		d    Descriptor
		cond Condition
		want bool
	}{
		{name: "keyword always counts", d: award, cond: Condition{Keyword: "도로"}, want: true},
		{name: "org on bid counts", d: bid, cond: Condition{DemandOrg: "서울특별시"}, want: true},
		{name: "org on award ignored", d: award, cond: Condition{DemandOrg: "서울특별시"}, want: false},
		{name: "number on award counts", d: award, cond: Condition{NoticeNumber: "20250811-00042"}, want: true},
		{name: "number on bid ignored", d: bid, cond: Condition{NoticeNumber: "20250811-00042"}, want: false},
		{name: "empty", d: bid, cond: Condition{}, want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cond.HasFilter(tt.d); got != tt.want {
				t.Fatalf("HasFilter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserConditionsFor(t *testing.T) {
	t.Parallel()
	u := User{
		Name: "홍길동",
		Conditions: []Condition{
			{Category: CategoryBid, Keyword: "a"},
			{Category: CategoryPre, Keyword: "b"},
			{Category: CategoryBid, Keyword: "c"},
		},
	}
	got := u.ConditionsFor(CategoryBid)
	if len(got) != 2 || got[0].Keyword != "a" || got[1].Keyword != "c" {
		t.Fatalf("ConditionsFor(bid) = %+v", got)
	}
	if got := u.ConditionsFor(CategoryAward); got != nil {
		t.Fatalf("ConditionsFor(award) = %+v, want nil", got)
	}
}
