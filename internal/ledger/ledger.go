// Package ledger persists which notice identifiers have already been
// notified, per user and per category. It is the single source of truth for
// deduplication across runs.
package ledger

import (
	"encoding/json"
	"sort"

	"bidwatch/internal/notice"
)

// IDSet is a set of notice identifiers. It round-trips as a JSON array;
// element order inside the array is not significant.
type IDSet map[string]struct{}

func (s IDSet) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return json.Marshal(ids)
}

func (s *IDSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	out := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			out[id] = struct{}{}
		}
	}
	*s = out
	return nil
}

// UserRecord holds one user's notified identifiers, one set per category.
// The JSON keys are the original on-disk ledger shape.
type UserRecord struct {
	Bid   IDSet `json:"bid_notices"`
	Pre   IDSet `json:"pre_notices"`
	Award IDSet `json:"award_notices"`
}

func (r *UserRecord) set(cat notice.Category) IDSet {
	switch cat {
	case notice.CategoryPre:
		if r.Pre == nil {
			r.Pre = IDSet{}
		}
		return r.Pre
	case notice.CategoryAward:
		if r.Award == nil {
			r.Award = IDSet{}
		}
		return r.Award
	default:
		if r.Bid == nil {
			r.Bid = IDSet{}
		}
		return r.Bid
	}
}

// Ledger maps user name to their per-category notified sets. It is held in
// memory for the duration of a run and flushed once at the end.
type Ledger struct {
	Users map[string]*UserRecord
}

func New() *Ledger {
	return &Ledger{Users: map[string]*UserRecord{}}
}

func (l *Ledger) user(name string) *UserRecord {
	if l.Users == nil {
		l.Users = map[string]*UserRecord{}
	}
	r, ok := l.Users[name]
	if !ok {
		r = &UserRecord{}
		l.Users[name] = r
	}
	return r
}

// HasNotified reports whether the identifier has already triggered a
// notification for this user and category.
func (l *Ledger) HasNotified(user string, cat notice.Category, id string) bool {
	if l == nil || l.Users == nil || id == "" {
		return false
	}
	r, ok := l.Users[user]
	if !ok {
		return false
	}
	_, ok = r.set(cat)[id]
	return ok
}

// MarkNotified records an identifier as notified. Re-adding is a no-op.
func (l *Ledger) MarkNotified(user string, cat notice.Category, id string) {
	if id == "" {
		return
	}
	l.user(user).set(cat)[id] = struct{}{}
}

// Count returns the number of recorded identifiers for (user, category).
func (l *Ledger) Count(user string, cat notice.Category) int {
	if l == nil || l.Users == nil {
		return 0
	}
	r, ok := l.Users[user]
	if !ok {
		return 0
	}
	return len(r.set(cat))
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	if l.Users == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(l.Users)
}

func (l *Ledger) UnmarshalJSON(b []byte) error {
	var users map[string]*UserRecord
	if err := json.Unmarshal(b, &users); err != nil {
		return err
	}
	if users == nil {
		users = map[string]*UserRecord{}
	}
	l.Users = users
	return nil
}
