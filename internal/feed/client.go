// Package feed queries the public procurement data feed. One call per search
// condition, one attempt per call: any failure is terminal for that condition
// and surfaces as a typed *Error.
package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"bidwatch/internal/notice"
	"bidwatch/internal/window"
	logx "bidwatch/pkg/logx"
)

// errorEnvelopeKey marks a feed-reported application error in the payload.
const errorEnvelopeKey = "nkoneps.com.response.ResponseError"

const (
	defaultPageSize = 100
	defaultTimeout  = 15 * time.Second
)

type Config struct {
	BaseURL    string
	ServiceKey string
	PageSize   int
	Timeout    time.Duration
}

type Client struct {
	cfg  Config
	http *resty.Client
	log  logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)
	return &Client{cfg: cfg, http: hc, log: log}
}

// Fetch runs one query for a condition against the category's endpoint and
// returns the items published inside the window, in feed response order.
// An absent items field means an empty result, not an error.
func (c *Client) Fetch(ctx context.Context, d notice.Descriptor, win window.Window, cond notice.Condition) ([]notice.Item, error) {
	params := map[string]string{
		"ServiceKey": c.cfg.ServiceKey,
		"pageNo":     "1",
		"numOfRows":  strconv.Itoa(c.cfg.PageSize),
		"inqryDiv":   "1",
		"inqryBgnDt": win.BeginStamp(),
		"inqryEndDt": win.EndStamp(),
		"type":       "json",
	}
	if d.IndustryCode != "" {
		params["indstrytyCd"] = d.IndustryCode
	}
	if cond.Keyword != "" {
		params[d.KeywordParam] = cond.Keyword
	}
	if d.OrgFilters {
		if cond.NoticeOrg != "" {
			params["ntceInsttNm"] = cond.NoticeOrg
		}
		if cond.DemandOrg != "" {
			params["dminsttNm"] = cond.DemandOrg
		}
	}
	if d.NumberFilter && cond.NoticeNumber != "" {
		params["bidNtceNo"] = cond.NoticeNumber
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(d.Path)
	if err != nil {
		return nil, &Error{Kind: KindTransport, err: err}
	}
	c.log.Debug("feed query",
		logx.String("category", string(d.Category)),
		logx.String("window", win.String()),
		logx.Int("status", resp.StatusCode()),
	)
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &Error{Kind: KindTransport, Status: resp.StatusCode()}
	}

	return decodeItems(resp.Body())
}

func decodeItems(body []byte) ([]notice.Item, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Kind: KindMalformed, err: err}
	}

	if env, ok := raw[errorEnvelopeKey]; ok {
		var e struct {
			Header struct {
				ResultCode string `json:"resultCode"`
				ResultMsg  string `json:"resultMsg"`
			} `json:"header"`
		}
		if err := json.Unmarshal(env, &e); err != nil {
			return nil, &Error{Kind: KindMalformed, err: err}
		}
		return nil, &Error{Kind: KindApplication, Code: e.Header.ResultCode, Msg: e.Header.ResultMsg}
	}

	rb, ok := raw["response"]
	if !ok {
		return nil, &Error{Kind: KindMalformed, Msg: "missing response envelope"}
	}
	var payload struct {
		Body struct {
			Items []notice.Item `json:"items"`
		} `json:"body"`
	}
	if err := json.Unmarshal(rb, &payload); err != nil {
		return nil, &Error{Kind: KindMalformed, err: err}
	}
	return payload.Body.Items, nil
}
