package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"bidwatch/internal/ledger"
	"bidwatch/internal/notice"
	"bidwatch/internal/window"
	logx "bidwatch/pkg/logx"
)

func testWindow(t *testing.T) window.Window {
	t.Helper()
	w, err := window.Compute(time.Date(2025, 8, 11, 19, 0, 0, 0, time.Local), batchHours)
	if err != nil {
		t.Fatalf("window.Compute error: %v", err)
	}
	return w
}

func TestEvaluateSkipsFilterlessCondition(t *testing.T) {
	t.Parallel()
	ff := &fakeFeed{}
	e := NewEvaluator(ff, logx.Nop())

	ev, err := e.Evaluate(context.Background(), ledger.New(),
		notice.User{Name: "u"},
		notice.Condition{Category: notice.CategoryBid},
		testWindow(t))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if !ev.Skipped {
		t.Fatal("expected skipped evaluation")
	}
	if ff.calls != 0 {
		t.Fatal("skipped condition must not hit the feed")
	}
}

func TestEvaluateAwardIgnoresUnsupportedOrgFilters(t *testing.T) {
	t.Parallel()
	// Award conditions only accept keyword/notice_number; an org-only
	// condition carries no usable filter.
	ff := &fakeFeed{}
	e := NewEvaluator(ff, logx.Nop())

	ev, err := e.Evaluate(context.Background(), ledger.New(),
		notice.User{Name: "u"},
		notice.Condition{Category: notice.CategoryAward, NoticeOrg: "조달청"},
		testWindow(t))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if !ev.Skipped {
		t.Fatal("expected skipped evaluation")
	}
}

func TestEvaluatePartitionsByLedgerInFeedOrder(t *testing.T) {
	t.Parallel()
	ff := &fakeFeed{items: map[string][]notice.Item{
		feedKey(notice.CategoryBid, "도로"): bidItems("b-1", "b-2", "b-3"),
	}}
	e := NewEvaluator(ff, logx.Nop())

	led := ledger.New()
	led.MarkNotified("u", notice.CategoryBid, "b-2")

	ev, err := e.Evaluate(context.Background(), led,
		notice.User{Name: "u"},
		notice.Condition{Category: notice.CategoryBid, Keyword: "도로"},
		testWindow(t))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(ev.Items) != 3 {
		t.Fatalf("Items = %d, want 3", len(ev.Items))
	}
	if len(ev.NewItems) != 2 {
		t.Fatalf("NewItems = %d, want 2", len(ev.NewItems))
	}
	d := notice.MustDescribe(notice.CategoryBid)
	if ev.NewItems[0].ID(d) != "b-1" || ev.NewItems[1].ID(d) != "b-3" {
		t.Fatalf("NewItems out of feed order: %v", ev.NewItems)
	}
	if !strings.Contains(ev.Desc, "키워드='도로'") {
		t.Fatalf("Desc = %q", ev.Desc)
	}
}

func TestEvaluateEmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()
	ff := &fakeFeed{}
	e := NewEvaluator(ff, logx.Nop())

	ev, err := e.Evaluate(context.Background(), ledger.New(),
		notice.User{Name: "u"},
		notice.Condition{Category: notice.CategoryPre, Keyword: "연구"},
		testWindow(t))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if ev.Skipped || len(ev.Items) != 0 || len(ev.NewItems) != 0 {
		t.Fatalf("unexpected evaluation: %+v", ev)
	}
}
