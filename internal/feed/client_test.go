package feed

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"bidwatch/internal/notice"
	"bidwatch/internal/window"
	logx "bidwatch/pkg/logx"
)

const baseURL = "https://feed.test"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := New(Config{BaseURL: baseURL, ServiceKey: "test-key"}, logx.Nop())
	httpmock.ActivateNonDefault(c.http.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func testWindow(t *testing.T) window.Window {
	t.Helper()
	w, err := window.Compute(
		time.Date(2025, 8, 11, 19, 0, 0, 0, time.Local),
		[]int{9, 12, 15, 18},
	)
	if err != nil {
		t.Fatalf("window.Compute error: %v", err)
	}
	return w
}

func TestFetchSuccess(t *testing.T) {
	c := newTestClient(t)
	d := notice.MustDescribe(notice.CategoryBid)

	var gotQuery map[string]string
	httpmock.RegisterResponder(http.MethodGet, baseURL+d.Path,
		func(req *http.Request) (*http.Response, error) {
			gotQuery = map[string]string{}
			for k := range req.URL.Query() {
				gotQuery[k] = req.URL.Query().Get(k)
			}
			return httpmock.NewJsonResponse(200, map[string]any{
				"response": map[string]any{
					"body": map[string]any{
						"items": []map[string]any{
							{"bidNtceNo": "2025-001", "bidNtceNm": "도로 보수"},
							{"bidNtceNo": "2025-002", "bidNtceNm": "교량 점검"},
						},
					},
				},
			})
		})

	items, err := c.Fetch(context.Background(), d, testWindow(t), notice.Condition{
		Category:  notice.CategoryBid,
		Keyword:   "도로",
		DemandOrg: "서울특별시",
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	// Response order must be preserved.
	if items[0].ID(d) != "2025-001" || items[1].ID(d) != "2025-002" {
		t.Fatalf("items out of order: %v", items)
	}

	want := map[string]string{
		"ServiceKey":  "test-key",
		"pageNo":      "1",
		"numOfRows":   "100",
		"inqryDiv":    "1",
		"inqryBgnDt":  "202508111500",
		"inqryEndDt":  "202508111800",
		"type":        "json",
		"indstrytyCd": "1468",
		"bidNtceNm":   "도로",
		"dminsttNm":   "서울특별시",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Fatalf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
	if _, ok := gotQuery["ntceInsttNm"]; ok {
		t.Fatal("empty notice_org filter must not be sent")
	}
}

func TestFetchAwardNumberFilter(t *testing.T) {
	c := newTestClient(t)
	d := notice.MustDescribe(notice.CategoryAward)

	var got url.Values
	httpmock.RegisterResponder(http.MethodGet, baseURL+d.Path,
		func(req *http.Request) (*http.Response, error) {
			got = req.URL.Query()
			return httpmock.NewJsonResponse(200, map[string]any{
				"response": map[string]any{"body": map[string]any{}},
			})
		})

	items, err := c.Fetch(context.Background(), d, testWindow(t), notice.Condition{
		Category:     notice.CategoryAward,
		NoticeNumber: "20250811-00042",
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	// Absent items field is an empty result, not an error.
	if len(items) != 0 {
		t.Fatalf("got %d items, want 0", len(items))
	}
	if got.Get("bidNtceNo") != "20250811-00042" {
		t.Fatalf("bidNtceNo = %q", got.Get("bidNtceNo"))
	}
}

func TestFetchApplicationError(t *testing.T) {
	c := newTestClient(t)
	d := notice.MustDescribe(notice.CategoryPre)

	httpmock.RegisterResponder(http.MethodGet, baseURL+d.Path,
		httpmock.NewStringResponder(200,
			`{"nkoneps.com.response.ResponseError":{"header":{"resultCode":"07","resultMsg":"입력범위값 초과"}}}`))

	_, err := c.Fetch(context.Background(), d, testWindow(t), notice.Condition{Keyword: "용역"})
	if !IsKind(err, KindApplication) {
		t.Fatalf("err = %v, want application kind", err)
	}
	fe := err.(*Error)
	if fe.Code != "07" || fe.Msg != "입력범위값 초과" {
		t.Fatalf("unexpected envelope fields: %+v", fe)
	}
}

func TestFetchTransportError(t *testing.T) {
	c := newTestClient(t)
	d := notice.MustDescribe(notice.CategoryBid)

	httpmock.RegisterResponder(http.MethodGet, baseURL+d.Path,
		httpmock.NewStringResponder(500, "internal error"))

	_, err := c.Fetch(context.Background(), d, testWindow(t), notice.Condition{Keyword: "도로"})
	if !IsKind(err, KindTransport) {
		t.Fatalf("err = %v, want transport kind", err)
	}
	if err.(*Error).Status != 500 {
		t.Fatalf("status = %d, want 500", err.(*Error).Status)
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	c := newTestClient(t)
	d := notice.MustDescribe(notice.CategoryBid)

	httpmock.RegisterResponder(http.MethodGet, baseURL+d.Path,
		httpmock.NewStringResponder(200, "<html>not json</html>"))

	_, err := c.Fetch(context.Background(), d, testWindow(t), notice.Condition{Keyword: "도로"})
	if !IsKind(err, KindMalformed) {
		t.Fatalf("err = %v, want malformed kind", err)
	}
}
