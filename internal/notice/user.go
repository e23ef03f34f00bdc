package notice

// Condition is one user-specified search filter scoped to a single category.
// A condition with no usable filter field is skipped, not an error.
type Condition struct {
	Category     Category `json:"type"`
	Keyword      string   `json:"keyword,omitempty"`
	NoticeOrg    string   `json:"notice_org,omitempty"`
	DemandOrg    string   `json:"demand_org,omitempty"`
	NoticeNumber string   `json:"notice_number,omitempty"`
}

// HasFilter reports whether the condition carries at least one filter field
// the category actually supports. Org filters only count for bid/pre; the
// notice-number filter only counts for award.
func (c Condition) HasFilter(d Descriptor) bool {
	if c.Keyword != "" {
		return true
	}
	if d.OrgFilters && (c.NoticeOrg != "" || c.DemandOrg != "") {
		return true
	}
	if d.NumberFilter && c.NoticeNumber != "" {
		return true
	}
	return false
}

// User is one notification recipient with their saved search conditions.
// Users are re-read from the users file every run and never mutated.
type User struct {
	Name       string      `json:"name"`
	Phone      string      `json:"phone"`
	Conditions []Condition `json:"search_conditions"`
}

// ConditionsFor returns the user's conditions of one category, in file order.
func (u User) ConditionsFor(cat Category) []Condition {
	var out []Condition
	for _, c := range u.Conditions {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}
