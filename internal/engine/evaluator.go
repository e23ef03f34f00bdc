// Package engine drives one batch run: evaluate every user's search
// conditions against the feed for the current window, send at most one
// message per previously-unseen item, and record what was sent.
package engine

import (
	"context"

	"bidwatch/internal/ledger"
	"bidwatch/internal/notice"
	"bidwatch/internal/window"
	logx "bidwatch/pkg/logx"
)

// Fetcher is the feed boundary. *feed.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, d notice.Descriptor, win window.Window, cond notice.Condition) ([]notice.Item, error)
}

// Evaluation is the outcome of one condition query.
type Evaluation struct {
	// Skipped is set when the condition had no usable filter field.
	Skipped bool

	// Desc describes the active filters, for logs and the limit warning.
	Desc string

	// Items is the full feed result, NewItems the not-yet-notified subset.
	// Both preserve feed response order.
	Items    []notice.Item
	NewItems []notice.Item
}

type Evaluator struct {
	feed Fetcher
	log  logx.Logger
}

func NewEvaluator(f Fetcher, log logx.Logger) *Evaluator {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Evaluator{feed: f, log: log}
}

// Evaluate runs one condition for one user. Feed failures are returned as-is
// (typed *feed.Error); the caller abandons the condition for this run only.
func (e *Evaluator) Evaluate(ctx context.Context, led *ledger.Ledger, user notice.User, cond notice.Condition, win window.Window) (Evaluation, error) {
	d := notice.MustDescribe(cond.Category)

	if !cond.HasFilter(d) {
		e.log.Debug("condition has no filter; skipping",
			logx.String("user", user.Name),
			logx.String("category", string(d.Category)),
		)
		return Evaluation{Skipped: true}, nil
	}
	desc := notice.SearchDescription(cond)

	items, err := e.feed.Fetch(ctx, d, win, cond)
	if err != nil {
		return Evaluation{Desc: desc}, err
	}

	ev := Evaluation{Desc: desc, Items: items}
	for _, it := range items {
		if led.HasNotified(user.Name, d.Category, it.ID(d)) {
			continue
		}
		ev.NewItems = append(ev.NewItems, it)
	}

	e.log.Debug("condition evaluated",
		logx.String("user", user.Name),
		logx.String("category", string(d.Category)),
		logx.String("search", desc),
		logx.Int("items", len(ev.Items)),
		logx.Int("new", len(ev.NewItems)),
	)
	return ev, nil
}
