package engine

import (
	"context"

	"golang.org/x/time/rate"

	"bidwatch/internal/messenger"
	"bidwatch/internal/notice"
	logx "bidwatch/pkg/logx"
)

// DefaultResultLimit is the largest new-item count still notified per item.
// Anything bigger triggers a single warning message instead.
const DefaultResultLimit = 5

// Outcome records whether one item's message went out.
type Outcome struct {
	Item notice.Item
	Sent bool
}

type Dispatcher struct {
	msgr    messenger.Messenger
	log     logx.Logger
	limit   int
	limiter *rate.Limiter
}

// NewDispatcher wires the delivery channel. ratePerSec throttles outbound
// messages (0 disables throttling); limit <= 0 falls back to the default.
func NewDispatcher(m messenger.Messenger, limit, ratePerSec int, log logx.Logger) *Dispatcher {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	var lim *rate.Limiter
	if ratePerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
	}
	return &Dispatcher{msgr: m, log: log, limit: limit, limiter: lim}
}

// Dispatch sends one message per new item, or exactly one warning when the
// result set is too large. warned=true means no per-item message was sent and
// none of the items may be recorded as notified: a later, narrower query can
// still notify on them individually.
//
// A failed send for one item never blocks the remaining items.
func (p *Dispatcher) Dispatch(ctx context.Context, d notice.Descriptor, user notice.User, newItems []notice.Item, desc string) (outcomes []Outcome, warned bool) {
	if len(newItems) == 0 {
		return nil, false
	}

	if len(newItems) > p.limit {
		text := notice.FormatLimitWarning(desc, len(newItems))
		if err := p.send(ctx, user.Phone, text); err != nil {
			p.log.Error("limit warning send failed",
				logx.String("user", user.Name),
				logx.String("search", desc),
				logx.Err(err),
			)
		} else {
			p.log.Info("limit warning sent",
				logx.String("user", user.Name),
				logx.String("search", desc),
				logx.Int("results", len(newItems)),
			)
		}
		return nil, true
	}

	for _, it := range newItems {
		text := notice.FormatMessage(d, it)
		err := p.send(ctx, user.Phone, text)
		outcomes = append(outcomes, Outcome{Item: it, Sent: err == nil})
		if err != nil {
			p.log.Error("notification send failed",
				logx.String("user", user.Name),
				logx.String("category", string(d.Category)),
				logx.String("id", it.ID(d)),
				logx.Err(err),
			)
			continue
		}
		p.log.Info("notification sent",
			logx.String("user", user.Name),
			logx.String("category", string(d.Category)),
			logx.String("id", it.ID(d)),
		)
	}
	return outcomes, false
}

func (p *Dispatcher) send(ctx context.Context, to, text string) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	r, err := p.msgr.Send(ctx, to, text)
	if err != nil {
		return err
	}
	if r.GroupID != "" {
		p.log.Debug("delivery accepted", logx.String("group_id", r.GroupID))
	}
	return nil
}
