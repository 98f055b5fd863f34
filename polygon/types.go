package polygon

import (
	"fmt"
	"time"
)

type Timespan string

const (
	Second  Timespan = "second"
	Minute  Timespan = "minute"
	Hour    Timespan = "hour"
	Day     Timespan = "day"
	Week    Timespan = "week"
	Month   Timespan = "month"
	Quarter Timespan = "quarter"
	Year    Timespan = "year"
)

func ParseTimespan(s string) (Timespan, error) {
	switch ts := Timespan(s); ts {
	case Second, Minute, Hour, Day, Week, Month, Quarter, Year:
		return ts, nil
	}
	return "", fmt.Errorf("invalid timespan %q: use second, minute, hour, day, week, month, quarter or year", s)
}

// Agg is one OHLCV bar. T is the bar start in Unix milliseconds.
type Agg struct {
	Open         float64 `json:"o"`
	High         float64 `json:"h"`
	Low          float64 `json:"l"`
	Close        float64 `json:"c"`
	Volume       float64 `json:"v"`
	VWAP         float64 `json:"vw"`
	Timestamp    int64   `json:"t"`
	Transactions int64   `json:"n"`
	OTC          bool    `json:"otc,omitempty"`
}

func (a Agg) Time() time.Time {
	return time.UnixMilli(a.Timestamp).UTC()
}

type AggsResponse struct {
	Ticker       string `json:"ticker"`
	Status       string `json:"status"`
	RequestID    string `json:"request_id"`
	Adjusted     bool   `json:"adjusted"`
	QueryCount   int    `json:"queryCount"`
	ResultsCount int    `json:"resultsCount"`
	Results      []Agg  `json:"results"`
	NextURL      string `json:"next_url,omitempty"`
}

type Trade struct {
	ID                   string  `json:"id"`
	Conditions           []int   `json:"conditions,omitempty"`
	Exchange             int     `json:"exchange"`
	Price                float64 `json:"price"`
	Size                 float64 `json:"size"`
	SequenceNumber       int64   `json:"sequence_number"`
	SIPTimestamp         int64   `json:"sip_timestamp"`
	ParticipantTimestamp int64   `json:"participant_timestamp"`
	Tape                 int     `json:"tape,omitempty"`
}

type TradesResponse struct {
	Status    string  `json:"status"`
	RequestID string  `json:"request_id"`
	Results   []Trade `json:"results"`
	NextURL   string  `json:"next_url,omitempty"`
}

type Quote struct {
	AskExchange          int     `json:"ask_exchange"`
	AskPrice             float64 `json:"ask_price"`
	AskSize              float64 `json:"ask_size"`
	BidExchange          int     `json:"bid_exchange"`
	BidPrice             float64 `json:"bid_price"`
	BidSize              float64 `json:"bid_size"`
	SequenceNumber       int64   `json:"sequence_number"`
	SIPTimestamp         int64   `json:"sip_timestamp"`
	ParticipantTimestamp int64   `json:"participant_timestamp"`
}

type QuotesResponse struct {
	Status    string  `json:"status"`
	RequestID string  `json:"request_id"`
	Results   []Quote `json:"results"`
	NextURL   string  `json:"next_url,omitempty"`
}

type Publisher struct {
	Name        string `json:"name"`
	HomepageURL string `json:"homepage_url"`
}

type NewsArticle struct {
	ID           string    `json:"id"`
	Publisher    Publisher `json:"publisher"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	PublishedUTC string    `json:"published_utc"`
	ArticleURL   string    `json:"article_url"`
	Tickers      []string  `json:"tickers"`
	Description  string    `json:"description,omitempty"`
	Keywords     []string  `json:"keywords,omitempty"`
}

type NewsResponse struct {
	Status    string        `json:"status"`
	RequestID string        `json:"request_id"`
	Count     int           `json:"count"`
	Results   []NewsArticle `json:"results"`
	NextURL   string        `json:"next_url,omitempty"`
}

type TickerDetails struct {
	Ticker          string  `json:"ticker"`
	Name            string  `json:"name"`
	Market          string  `json:"market"`
	Locale          string  `json:"locale"`
	PrimaryExchange string  `json:"primary_exchange"`
	Type            string  `json:"type"`
	Active          bool    `json:"active"`
	CurrencyName    string  `json:"currency_name"`
	CIK             string  `json:"cik,omitempty"`
	MarketCap       float64 `json:"market_cap,omitempty"`
	Description     string  `json:"description,omitempty"`
	HomepageURL     string  `json:"homepage_url,omitempty"`
	TotalEmployees  int64   `json:"total_employees,omitempty"`
	ListDate        string  `json:"list_date,omitempty"`
}

type MarketStatus struct {
	Market     string            `json:"market"`
	ServerTime string            `json:"serverTime"`
	EarlyHours bool              `json:"earlyHours"`
	AfterHours bool              `json:"afterHours"`
	Exchanges  map[string]string `json:"exchanges"`
	Currencies map[string]string `json:"currencies"`
}
