package engine

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"bidwatch/internal/ledger"
	"bidwatch/internal/notice"
	"bidwatch/internal/window"
	logx "bidwatch/pkg/logx"
)

// UserSource yields the current user list. Users are re-read every run so
// edits to the users file take effect without a restart.
type UserSource interface {
	Users(ctx context.Context) ([]notice.User, error)
}

// StoreOpener opens the ledger store, taking exclusive ownership of the
// ledger resource until Close.
type StoreOpener func() (ledger.Store, error)

// CategoryReport summarizes one category's pass.
type CategoryReport struct {
	Category notice.Category
	Sent     int // successful per-item notifications
	Warnings int // conditions that hit the result limit
	Skipped  int // conditions with no usable filter

	FeedErrors   int
	SendFailures int
}

// Report is the value returned by a full run. Sent counts successful sends
// only; partial failures surface in logs and the error counters.
type Report struct {
	Window     window.Window
	Categories []CategoryReport
}

func (r Report) TotalSent() int {
	total := 0
	for _, c := range r.Categories {
		total += c.Sent
	}
	return total
}

// Orchestrator composes window computation, evaluation, dispatch, and ledger
// persistence into one sequential pass per invocation. It holds no run state
// between invocations, so it is safe to call Run repeatedly.
type Orchestrator struct {
	hours []int
	clock clockwork.Clock
	users UserSource
	open  StoreOpener
	eval  *Evaluator
	disp  *Dispatcher
	log   logx.Logger
}

// NewOrchestrator validates the batch-hour list up front: a bad list is a
// configuration error and no work happens.
func NewOrchestrator(hours []int, clock clockwork.Clock, users UserSource, open StoreOpener, eval *Evaluator, disp *Dispatcher, log logx.Logger) (*Orchestrator, error) {
	if err := window.Validate(hours); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Orchestrator{
		hours: hours,
		clock: clock,
		users: users,
		open:  open,
		eval:  eval,
		disp:  disp,
		log:   log,
	}, nil
}

// Run executes one pass over all three categories. The ledger is exclusively
// held for the whole pass; each category loads, mutates, and persists it in
// turn. A ledger failure aborts the run (re-notifying is worse than a missed
// pass); a feed or send failure only abandons its condition or item.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	now := o.clock.Now()
	win, err := window.Compute(now, o.hours)
	if err != nil {
		return Report{}, err
	}
	o.log.Info("run started",
		logx.Time("now", now),
		logx.String("window", win.String()),
	)

	users, err := o.users.Users(ctx)
	if err != nil {
		return Report{Window: win}, fmt.Errorf("load users: %w", err)
	}

	st, err := o.open()
	if err != nil {
		return Report{Window: win}, fmt.Errorf("open ledger: %w", err)
	}
	defer st.Close()

	rep := Report{Window: win}
	for _, cat := range notice.Categories() {
		cr, err := o.runCategory(ctx, st, notice.MustDescribe(cat), win, users)
		rep.Categories = append(rep.Categories, cr)
		if err != nil {
			return rep, err
		}
	}

	o.log.Info("run finished", logx.Int("total_sent", rep.TotalSent()))
	return rep, nil
}

func (o *Orchestrator) runCategory(ctx context.Context, st ledger.Store, d notice.Descriptor, win window.Window, users []notice.User) (CategoryReport, error) {
	rep := CategoryReport{Category: d.Category}
	log := o.log.With(logx.String("category", string(d.Category)))

	led, err := st.Load(ctx)
	if err != nil {
		// Corrupt or unreadable state: abort with nothing persisted.
		return rep, fmt.Errorf("load ledger: %w", err)
	}

	for _, u := range users {
		conds := u.ConditionsFor(d.Category)
		if len(conds) == 0 {
			log.Debug("no conditions for user", logx.String("user", u.Name))
			continue
		}

		for _, cond := range conds {
			ev, err := o.eval.Evaluate(ctx, led, u, cond, win)
			if err != nil {
				// One bad condition never stops the run.
				rep.FeedErrors++
				log.Error("condition query failed",
					logx.String("user", u.Name),
					logx.String("search", ev.Desc),
					logx.Err(err),
				)
				continue
			}
			if ev.Skipped {
				rep.Skipped++
				continue
			}
			if len(ev.NewItems) == 0 {
				log.Debug("no new items",
					logx.String("user", u.Name),
					logx.String("search", ev.Desc),
					logx.Int("items", len(ev.Items)),
				)
				continue
			}

			outcomes, warned := o.disp.Dispatch(ctx, d, u, ev.NewItems, ev.Desc)
			if warned {
				// Deliberately no ledger marks: a narrower query later may
				// still notify on these items individually.
				rep.Warnings++
				continue
			}
			for _, oc := range outcomes {
				if oc.Sent {
					led.MarkNotified(u.Name, d.Category, oc.Item.ID(d))
					rep.Sent++
				} else {
					rep.SendFailures++
				}
			}
		}
	}

	if err := st.Save(ctx, led); err != nil {
		return rep, fmt.Errorf("save ledger: %w", err)
	}

	log.Info("category finished",
		logx.Int("sent", rep.Sent),
		logx.Int("warnings", rep.Warnings),
		logx.Int("feed_errors", rep.FeedErrors),
		logx.Int("send_failures", rep.SendFailures),
	)
	return rep, nil
}
