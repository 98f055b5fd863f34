package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// AggsParams selects a range of aggregate bars for one ticker.
type AggsParams struct {
	Ticker     string
	Multiplier int
	Timespan   Timespan
	From       string
	To         string
	// Unadjusted turns off split adjustment, which the API applies by default.
	Unadjusted bool
	Sort       string
	Limit      int
}

func (p AggsParams) validate() error {
	var errs []error
	if p.Ticker == "" {
		errs = append(errs, errors.New("ticker is required"))
	}
	if p.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("multiplier must be positive, got %d", p.Multiplier))
	}
	if _, err := ParseTimespan(string(p.Timespan)); err != nil {
		errs = append(errs, err)
	}
	if p.From == "" || p.To == "" {
		errs = append(errs, errors.New("from and to are required"))
	}
	return errors.Join(errs...)
}

func (p AggsParams) path() string {
	return fmt.Sprintf("/v2/aggs/ticker/%s/range/%d/%s/%s/%s",
		url.PathEscape(p.Ticker), p.Multiplier, p.Timespan,
		url.PathEscape(p.From), url.PathEscape(p.To))
}

func (p AggsParams) query() map[string]string {
	q := map[string]string{"adjusted": strconv.FormatBool(!p.Unadjusted)}
	if p.Sort != "" {
		q["sort"] = p.Sort
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	return q
}

// ListParams are the common knobs of the v3 list endpoints.
type ListParams struct {
	Limit int
	Order string
	Sort  string
	// Filters are passed through verbatim, e.g. "timestamp.gte".
	Filters map[string]string
}

func (p ListParams) query() map[string]string {
	q := make(map[string]string, len(p.Filters)+3)
	for k, v := range p.Filters {
		q[k] = v
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Order != "" {
		q["order"] = p.Order
	}
	if p.Sort != "" {
		q["sort"] = p.Sort
	}
	return q
}

// Aggregates fetches bars for a ticker, following next_url until the range is
// exhausted.
func (c *Client) Aggregates(ctx context.Context, p AggsParams) (*AggsResponse, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid aggregates request: %w", err)
	}

	var out AggsResponse
	if err := c.getJSON(ctx, p.path(), p.query(), &out); err != nil {
		return nil, err
	}
	for next := out.NextURL; next != ""; {
		var more AggsResponse
		if err := c.getJSON(ctx, next, nil, &more); err != nil {
			return nil, err
		}
		out.Results = append(out.Results, more.Results...)
		next = more.NextURL
	}
	out.NextURL = ""
	out.ResultsCount = len(out.Results)
	return &out, nil
}

func (c *Client) PreviousClose(ctx context.Context, ticker string, unadjusted bool) (*AggsResponse, error) {
	var out AggsResponse
	path := "/v2/aggs/ticker/" + url.PathEscape(ticker) + "/prev"
	q := map[string]string{"adjusted": strconv.FormatBool(!unadjusted)}
	if err := c.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trades returns one page of trades. Use GetAll for the full history.
func (c *Client) Trades(ctx context.Context, ticker string, p ListParams) (*TradesResponse, error) {
	var out TradesResponse
	if err := c.getJSON(ctx, "/v3/trades/"+url.PathEscape(ticker), p.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Quotes(ctx context.Context, ticker string, p ListParams) (*QuotesResponse, error) {
	var out QuotesResponse
	if err := c.getJSON(ctx, "/v3/quotes/"+url.PathEscape(ticker), p.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) News(ctx context.Context, p ListParams) (*NewsResponse, error) {
	var out NewsResponse
	if err := c.getJSON(ctx, "/v2/reference/news", p.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TickerDetails(ctx context.Context, ticker string) (*TickerDetails, error) {
	var out struct {
		Results TickerDetails `json:"results"`
	}
	if err := c.getJSON(ctx, "/v3/reference/tickers/"+url.PathEscape(ticker), nil, &out); err != nil {
		return nil, err
	}
	return &out.Results, nil
}

func (c *Client) MarketStatus(ctx context.Context) (*MarketStatus, error) {
	var out MarketStatus
	if err := c.getJSON(ctx, "/v1/marketstatus/now", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
