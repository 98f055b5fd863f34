package commands

const (
	GroupStocks     = "stocks"
	GroupCrypto     = "crypto"
	GroupForex      = "forex"
	GroupOptions    = "options"
	GroupIndicators = "indicators"
	GroupReference  = "reference"
)

func pathParam(name, usage string) Param {
	return Param{Name: name, In: Path, Required: true, Usage: usage}
}

func queryParam(name, usage string) Param {
	return Param{Name: name, In: Query, Usage: usage}
}

func queryDefault(name, def, usage string) Param {
	return Param{Name: name, In: Query, Default: def, Usage: usage}
}

func queryKey(name, key, usage string) Param {
	return Param{Name: name, Key: key, In: Query, Usage: usage}
}

var (
	aggColumns   = []string{"t", "o", "h", "l", "c", "v", "vw", "n"}
	tradeColumns = []string{"sip_timestamp", "price", "size", "exchange", "conditions"}
	quoteColumns = []string{"sip_timestamp", "bid_price", "bid_size", "ask_price", "ask_size"}
)

func aggsCommand(name, group, tickerUsage string) Command {
	return Command{
		Name:  name,
		Group: group,
		Short: "Aggregate (OHLCV) bars over a date range",
		Path:  "/v2/aggs/ticker/{ticker}/range/{multiplier}/{timespan}/{from}/{to}",
		Params: []Param{
			pathParam("ticker", tickerUsage),
			pathParam("multiplier", "size of the timespan multiplier, e.g. 5"),
			pathParam("timespan", "second, minute, hour, day, week, month, quarter or year"),
			pathParam("from", "start of the range, YYYY-MM-DD or Unix ms"),
			pathParam("to", "end of the range, YYYY-MM-DD or Unix ms"),
			queryDefault("adjusted", "true", "adjust for splits"),
			queryParam("sort", "asc or desc by timestamp"),
			queryParam("limit", "maximum number of base aggregates (max 50000)"),
		},
		Paginated: true,
		Columns:   aggColumns,
	}
}

func prevCommand(name, group, tickerUsage string) Command {
	return Command{
		Name:  name,
		Group: group,
		Short: "Previous day's OHLCV bar",
		Path:  "/v2/aggs/ticker/{ticker}/prev",
		Params: []Param{
			pathParam("ticker", tickerUsage),
			queryDefault("adjusted", "true", "adjust for splits"),
		},
		Columns: append([]string{"T"}, aggColumns...),
	}
}

func groupedCommand(name, group, market string) Command {
	return Command{
		Name:  name,
		Group: group,
		Short: "Daily bars for the entire " + market + " market on one date",
		Path:  "/v2/aggs/grouped/locale/{locale}/market/" + market + "/{date}",
		Params: []Param{
			{Name: "locale", In: Path, Required: true, Default: localeFor(market), Usage: "market locale"},
			pathParam("date", "trading date, YYYY-MM-DD"),
			queryDefault("adjusted", "true", "adjust for splits"),
			queryParam("include-otc", "include OTC securities"),
		},
		Columns: append([]string{"T"}, aggColumns...),
	}
}

func localeFor(market string) string {
	if market == "stocks" {
		return "us"
	}
	return "global"
}

func listParams(sortUsage string) []Param {
	return []Param{
		queryParam("order", "asc or desc"),
		queryParam("limit", "results per page"),
		queryParam("sort", sortUsage),
	}
}

func tradesCommand(name, group, tickerUsage string) Command {
	return Command{
		Name:  name,
		Group: group,
		Short: "Tick-level trades for a ticker",
		Path:  "/v3/trades/{ticker}",
		Params: append([]Param{
			pathParam("ticker", tickerUsage),
			queryParam("timestamp", "date (YYYY-MM-DD) or nanosecond timestamp"),
			queryKey("since", "timestamp.gte", "trades at or after this time"),
			queryKey("until", "timestamp.lt", "trades before this time"),
		}, listParams("field to sort by, e.g. timestamp")...),
		Paginated: true,
		Columns:   tradeColumns,
	}
}

func quotesCommand(name, group, tickerUsage string) Command {
	return Command{
		Name:  name,
		Group: group,
		Short: "NBBO quotes for a ticker",
		Path:  "/v3/quotes/{ticker}",
		Params: append([]Param{
			pathParam("ticker", tickerUsage),
			queryParam("timestamp", "date (YYYY-MM-DD) or nanosecond timestamp"),
			queryKey("since", "timestamp.gte", "quotes at or after this time"),
			queryKey("until", "timestamp.lt", "quotes before this time"),
		}, listParams("field to sort by, e.g. timestamp")...),
		Paginated: true,
		Columns:   quoteColumns,
	}
}

func indicatorCommand(name, short string, extra ...Param) Command {
	params := []Param{
		pathParam("ticker", "any ticker, e.g. AAPL, X:BTCUSD, C:EURUSD"),
		queryParam("timestamp", "date (YYYY-MM-DD) or Unix ms"),
		queryDefault("timespan", "day", "aggregate window size"),
		queryDefault("adjusted", "true", "adjust for splits"),
		queryDefault("series-type", "close", "open, high, low or close"),
	}
	params = append(params, extra...)
	params = append(params,
		queryParam("expand-underlying", "include the underlying aggregates"),
		queryParam("order", "asc or desc"),
		queryParam("limit", "number of values (max 5000)"),
	)
	return Command{
		Name:      name,
		Group:     GroupIndicators,
		Short:     short,
		Path:      "/v1/indicators/" + name + "/{ticker}",
		Params:    params,
		Paginated: true,
		Columns:   []string{"timestamp", "value", "signal", "histogram"},
	}
}

const (
	stockTicker  = "stock ticker, e.g. AAPL"
	cryptoTicker = "crypto ticker, e.g. X:BTCUSD"
	forexTicker  = "forex ticker, e.g. C:EURUSD"
	optionTicker = "options contract, e.g. O:SPY251219C00650000"
)

// Default returns the full command table.
func Default() Table {
	return Table{
		// stocks
		aggsCommand("stocks-aggs", GroupStocks, stockTicker),
		prevCommand("stocks-prev", GroupStocks, stockTicker),
		{
			Name:  "stocks-open-close",
			Group: GroupStocks,
			Short: "Open, close and after-hours prices for a date",
			Path:  "/v1/open-close/{ticker}/{date}",
			Params: []Param{
				pathParam("ticker", stockTicker),
				pathParam("date", "trading date, YYYY-MM-DD"),
				queryDefault("adjusted", "true", "adjust for splits"),
			},
		},
		groupedCommand("stocks-grouped", GroupStocks, "stocks"),
		tradesCommand("stocks-trades", GroupStocks, stockTicker),
		quotesCommand("stocks-quotes", GroupStocks, stockTicker),
		{
			Name:    "stocks-last-trade",
			Group:   GroupStocks,
			Short:   "Most recent trade for a ticker",
			Path:    "/v2/last/trade/{ticker}",
			Params:  []Param{pathParam("ticker", stockTicker)},
			Columns: []string{"T", "t", "p", "s", "x"},
		},
		{
			Name:    "stocks-last-quote",
			Group:   GroupStocks,
			Short:   "Most recent NBBO quote for a ticker",
			Path:    "/v2/last/nbbo/{ticker}",
			Params:  []Param{pathParam("ticker", stockTicker)},
			Columns: []string{"T", "t", "p", "s", "P", "S"},
		},
		{
			Name:   "stocks-snapshot",
			Group:  GroupStocks,
			Short:  "Current minute, day and previous day snapshot for a ticker",
			Path:   "/v2/snapshot/locale/us/markets/stocks/tickers/{ticker}",
			Params: []Param{pathParam("ticker", stockTicker)},
		},
		{
			Name:  "stocks-movers",
			Group: GroupStocks,
			Short: "Top 20 gainers or losers of the day",
			Path:  "/v2/snapshot/locale/us/markets/stocks/{direction}",
			Params: []Param{
				{Name: "direction", In: Path, Required: true, Default: "gainers", Usage: "gainers or losers"},
				queryParam("include-otc", "include OTC securities"),
			},
			Columns: []string{"ticker", "todaysChangePerc", "todaysChange", "updated"},
		},

		// crypto
		aggsCommand("crypto-aggs", GroupCrypto, cryptoTicker),
		prevCommand("crypto-prev", GroupCrypto, cryptoTicker),
		{
			Name:  "crypto-open-close",
			Group: GroupCrypto,
			Short: "Open and close for a crypto pair on a date",
			Path:  "/v1/open-close/crypto/{from}/{to}/{date}",
			Params: []Param{
				pathParam("from", "base currency, e.g. BTC"),
				pathParam("to", "quote currency, e.g. USD"),
				pathParam("date", "date, YYYY-MM-DD"),
				queryDefault("adjusted", "true", "adjust for splits"),
			},
		},
		groupedCommand("crypto-grouped", GroupCrypto, "crypto"),
		tradesCommand("crypto-trades", GroupCrypto, cryptoTicker),
		{
			Name:  "crypto-last-trade",
			Group: GroupCrypto,
			Short: "Most recent trade for a crypto pair",
			Path:  "/v1/last/crypto/{from}/{to}",
			Params: []Param{
				pathParam("from", "base currency, e.g. BTC"),
				pathParam("to", "quote currency, e.g. USD"),
			},
		},
		{
			Name:   "crypto-snapshot",
			Group:  GroupCrypto,
			Short:  "Current snapshot for a crypto pair",
			Path:   "/v2/snapshot/locale/global/markets/crypto/tickers/{ticker}",
			Params: []Param{pathParam("ticker", cryptoTicker)},
		},

		// forex
		aggsCommand("forex-aggs", GroupForex, forexTicker),
		prevCommand("forex-prev", GroupForex, forexTicker),
		quotesCommand("forex-quotes", GroupForex, forexTicker),
		{
			Name:  "forex-convert",
			Group: GroupForex,
			Short: "Convert an amount between two currencies",
			Path:  "/v1/conversion/{from}/{to}",
			Params: []Param{
				pathParam("from", "source currency, e.g. USD"),
				pathParam("to", "target currency, e.g. EUR"),
				queryDefault("amount", "1", "amount to convert"),
				queryDefault("precision", "2", "decimal places in the result"),
			},
			Columns: []string{"from", "to", "initialAmount", "converted"},
		},
		{
			Name:  "forex-last-quote",
			Group: GroupForex,
			Short: "Most recent quote for a currency pair",
			Path:  "/v1/last_quote/currencies/{from}/{to}",
			Params: []Param{
				pathParam("from", "base currency, e.g. EUR"),
				pathParam("to", "quote currency, e.g. USD"),
			},
		},
		{
			Name:   "forex-snapshot",
			Group:  GroupForex,
			Short:  "Current snapshot for a currency pair",
			Path:   "/v2/snapshot/locale/global/markets/forex/tickers/{ticker}",
			Params: []Param{pathParam("ticker", forexTicker)},
		},

		// options
		aggsCommand("options-aggs", GroupOptions, optionTicker),
		{
			Name:  "options-contracts",
			Group: GroupOptions,
			Short: "List options contracts",
			Path:  "/v3/reference/options/contracts",
			Params: append([]Param{
				queryKey("underlying", "underlying_ticker", "underlying ticker, e.g. SPY"),
				queryParam("contract-type", "call or put"),
				queryParam("expiration-date", "expiration date, YYYY-MM-DD"),
				queryParam("strike-price", "strike price"),
				queryParam("as-of", "contracts as of this date, YYYY-MM-DD"),
				queryParam("expired", "include expired contracts"),
			}, listParams("field to sort by, e.g. expiration_date")...),
			Paginated: true,
			Columns:   []string{"ticker", "underlying_ticker", "contract_type", "strike_price", "expiration_date"},
		},
		{
			Name:  "options-contract",
			Group: GroupOptions,
			Short: "Details for one options contract",
			Path:  "/v3/reference/options/contracts/{ticker}",
			Params: []Param{
				pathParam("ticker", optionTicker),
				queryParam("as-of", "contract as of this date, YYYY-MM-DD"),
			},
		},
		{
			Name:  "options-chain",
			Group: GroupOptions,
			Short: "Snapshot of every contract for an underlying asset",
			Path:  "/v3/snapshot/options/{underlying}",
			Params: append([]Param{
				pathParam("underlying", "underlying ticker, e.g. SPY"),
				queryParam("contract-type", "call or put"),
				queryParam("expiration-date", "expiration date, YYYY-MM-DD"),
				queryParam("strike-price", "strike price"),
			}, listParams("field to sort by, e.g. strike_price")...),
			Paginated: true,
		},
		tradesCommand("options-trades", GroupOptions, optionTicker),

		// indicators
		indicatorCommand("sma", "Simple moving average",
			queryDefault("window", "50", "number of bars in the average")),
		indicatorCommand("ema", "Exponential moving average",
			queryDefault("window", "50", "number of bars in the average")),
		indicatorCommand("macd", "Moving average convergence/divergence",
			queryDefault("short-window", "12", "short EMA window"),
			queryDefault("long-window", "26", "long EMA window"),
			queryDefault("signal-window", "9", "signal line window")),
		indicatorCommand("rsi", "Relative strength index",
			queryDefault("window", "14", "number of bars in the index")),

		// reference
		{
			Name:  "tickers",
			Group: GroupReference,
			Short: "Search and list tickers",
			Path:  "/v3/reference/tickers",
			Params: append([]Param{
				queryParam("ticker", "exact ticker"),
				queryParam("type", "ticker type, see ticker-types"),
				queryParam("market", "stocks, crypto, fx, otc or indices"),
				queryParam("exchange", "primary exchange MIC"),
				queryParam("search", "search terms in the name or ticker"),
				queryDefault("active", "true", "only actively traded tickers"),
				queryParam("date", "tickers as of this date, YYYY-MM-DD"),
			}, listParams("field to sort by, e.g. ticker")...),
			Paginated: true,
			Columns:   []string{"ticker", "name", "market", "primary_exchange", "type", "active"},
		},
		{
			Name:  "ticker-details",
			Group: GroupReference,
			Short: "Details for one ticker",
			Path:  "/v3/reference/tickers/{ticker}",
			Params: []Param{
				pathParam("ticker", stockTicker),
				queryParam("date", "details as of this date, YYYY-MM-DD"),
			},
		},
		{
			Name:  "ticker-types",
			Group: GroupReference,
			Short: "Ticker types supported by the API",
			Path:  "/v3/reference/tickers/types",
			Params: []Param{
				queryParam("asset-class", "stocks, options, crypto, fx or indices"),
				queryParam("locale", "us or global"),
			},
			Columns: []string{"code", "description", "asset_class", "locale"},
		},
		{
			Name:  "news",
			Group: GroupReference,
			Short: "Recent news articles, optionally for one ticker",
			Path:  "/v2/reference/news",
			Params: append([]Param{
				queryParam("ticker", "only articles mentioning this ticker"),
				queryKey("published-since", "published_utc.gte", "articles published at or after this time"),
				queryKey("published-until", "published_utc.lte", "articles published at or before this time"),
			}, listParams("field to sort by, e.g. published_utc")...),
			Paginated: true,
			Columns:   []string{"published_utc", "title", "tickers"},
		},
		{
			Name:  "dividends",
			Group: GroupReference,
			Short: "Historical cash dividends",
			Path:  "/v3/reference/dividends",
			Params: append([]Param{
				queryParam("ticker", "stock ticker"),
				queryParam("ex-dividend-date", "ex-dividend date, YYYY-MM-DD"),
				queryParam("frequency", "payouts per year"),
				queryParam("dividend-type", "CD, SC, LT or ST"),
			}, listParams("field to sort by, e.g. ex_dividend_date")...),
			Paginated: true,
			Columns:   []string{"ticker", "ex_dividend_date", "pay_date", "cash_amount", "frequency"},
		},
		{
			Name:  "splits",
			Group: GroupReference,
			Short: "Historical stock splits",
			Path:  "/v3/reference/splits",
			Params: append([]Param{
				queryParam("ticker", "stock ticker"),
				queryParam("execution-date", "execution date, YYYY-MM-DD"),
				queryParam("reverse-split", "only reverse splits"),
			}, listParams("field to sort by, e.g. execution_date")...),
			Paginated: true,
			Columns:   []string{"ticker", "execution_date", "split_from", "split_to"},
		},
		{
			Name:  "exchanges",
			Group: GroupReference,
			Short: "Exchanges known to the API",
			Path:  "/v3/reference/exchanges",
			Params: []Param{
				queryParam("asset-class", "stocks, options, crypto or fx"),
				queryParam("locale", "us or global"),
			},
			Columns: []string{"id", "mic", "name", "type", "asset_class"},
		},
		{
			Name:  "conditions",
			Group: GroupReference,
			Short: "Trade and quote condition codes",
			Path:  "/v3/reference/conditions",
			Params: append([]Param{
				queryParam("asset-class", "stocks, options, crypto or fx"),
				queryParam("data-type", "trade, bbo or nbbo"),
				queryParam("id", "condition id"),
				queryParam("sip", "CTA, UTP or OPRA"),
			}, listParams("field to sort by, e.g. name")...),
			Paginated: true,
			Columns:   []string{"id", "name", "type", "asset_class", "data_types"},
		},
		{
			Name:  "market-status",
			Group: GroupReference,
			Short: "Current trading status of exchanges and markets",
			Path:  "/v1/marketstatus/now",
		},
		{
			Name:    "market-holidays",
			Group:   GroupReference,
			Short:   "Upcoming market holidays and early closes",
			Path:    "/v1/marketstatus/upcoming",
			Columns: []string{"date", "exchange", "name", "status", "open", "close"},
		},
		{
			Name:  "financials",
			Group: GroupReference,
			Short: "Financial statements from SEC filings",
			Path:  "/vX/reference/financials",
			Params: append([]Param{
				queryParam("ticker", "stock ticker"),
				queryParam("cik", "SEC central index key"),
				queryParam("timeframe", "annual, quarterly or ttm"),
				queryParam("filing-date", "filing date, YYYY-MM-DD"),
				queryParam("period-of-report-date", "period of report date, YYYY-MM-DD"),
				queryParam("include-sources", "include xpath and formula sources"),
			}, listParams("field to sort by, e.g. filing_date")...),
			Paginated: true,
			Columns:   []string{"tickers", "fiscal_year", "fiscal_period", "start_date", "end_date"},
		},
	}
}
