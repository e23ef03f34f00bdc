package engine

import (
	"context"
	"strings"
	"testing"

	"bidwatch/internal/notice"
	logx "bidwatch/pkg/logx"
)

func TestDispatchAtLimitSendsPerItem(t *testing.T) {
	t.Parallel()
	fm := &fakeMessenger{}
	p := NewDispatcher(fm, 5, 0, logx.Nop())
	d := notice.MustDescribe(notice.CategoryBid)
	user := notice.User{Name: "u", Phone: "010"}

	outcomes, warned := p.Dispatch(context.Background(), d, user, bidItems("a", "b", "c", "d", "e"), "키워드='x'")
	if warned {
		t.Fatal("five items must not trigger the warning")
	}
	if len(outcomes) != 5 || len(fm.sent) != 5 {
		t.Fatalf("outcomes=%d sent=%d, want 5/5", len(outcomes), len(fm.sent))
	}
	for _, oc := range outcomes {
		if !oc.Sent {
			t.Fatalf("unexpected failed outcome: %+v", oc)
		}
	}
}

func TestDispatchOverLimitSendsSingleWarning(t *testing.T) {
	t.Parallel()
	fm := &fakeMessenger{}
	p := NewDispatcher(fm, 5, 0, logx.Nop())
	d := notice.MustDescribe(notice.CategoryBid)
	user := notice.User{Name: "u", Phone: "010"}

	outcomes, warned := p.Dispatch(context.Background(), d, user, bidItems("a", "b", "c", "d", "e", "f"), "키워드='x'")
	if !warned {
		t.Fatal("six items must trigger the warning")
	}
	if len(outcomes) != 0 {
		t.Fatalf("outcomes = %d, want 0 (no per-item sends)", len(outcomes))
	}
	if len(fm.sent) != 1 {
		t.Fatalf("sent = %d, want exactly 1 warning", len(fm.sent))
	}
	if !strings.Contains(fm.sent[0], "6건") || !strings.Contains(fm.sent[0], "키워드='x'") {
		t.Fatalf("warning text = %q", fm.sent[0])
	}
}

func TestDispatchWarningSendFailureStillWarns(t *testing.T) {
	t.Parallel()
	fm := &fakeMessenger{failWhen: func(string) bool { return true }}
	p := NewDispatcher(fm, 5, 0, logx.Nop())
	d := notice.MustDescribe(notice.CategoryBid)

	_, warned := p.Dispatch(context.Background(), d, notice.User{Name: "u"}, bidItems("a", "b", "c", "d", "e", "f"), "x")
	if !warned {
		t.Fatal("warned must hold even when the warning send fails")
	}
}

func TestDispatchFailureDoesNotBlockRest(t *testing.T) {
	t.Parallel()
	fm := &fakeMessenger{failWhen: func(text string) bool { return strings.Contains(text, "b") }}
	p := NewDispatcher(fm, 5, 0, logx.Nop())
	d := notice.MustDescribe(notice.CategoryBid)

	outcomes, warned := p.Dispatch(context.Background(), d, notice.User{Name: "u"}, bidItems("a", "b", "c"), "x")
	if warned {
		t.Fatal("unexpected warning")
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}
	want := []bool{true, false, true}
	for i, oc := range outcomes {
		if oc.Sent != want[i] {
			t.Fatalf("outcome %d Sent = %v, want %v", i, oc.Sent, want[i])
		}
	}
}

func TestDispatchEmptyIsNoop(t *testing.T) {
	t.Parallel()
	fm := &fakeMessenger{}
	p := NewDispatcher(fm, 0, 0, logx.Nop())
	d := notice.MustDescribe(notice.CategoryBid)

	outcomes, warned := p.Dispatch(context.Background(), d, notice.User{Name: "u"}, nil, "x")
	if warned || len(outcomes) != 0 || len(fm.sent) != 0 {
		t.Fatal("empty dispatch must do nothing")
	}
}

func TestDispatchCustomLimit(t *testing.T) {
	t.Parallel()
	fm := &fakeMessenger{}
	p := NewDispatcher(fm, 2, 0, logx.Nop())
	d := notice.MustDescribe(notice.CategoryBid)

	_, warned := p.Dispatch(context.Background(), d, notice.User{Name: "u"}, bidItems("a", "b", "c"), "x")
	if !warned {
		t.Fatal("three items over a limit of two must warn")
	}
}
