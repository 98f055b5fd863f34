package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableIsValid(t *testing.T) {
	table := Default()
	require.NoError(t, table.Validate())

	for _, name := range []string{"stocks-aggs", "crypto-trades", "news", "forex-convert", "options-chain", "sma", "market-status"} {
		_, ok := table.Lookup(name)
		assert.True(t, ok, "missing command %s", name)
	}
	assert.Equal(t, []string{GroupStocks, GroupCrypto, GroupForex, GroupOptions, GroupIndicators, GroupReference}, table.Groups())
}

func TestResolveAggs(t *testing.T) {
	cmd, ok := Default().Lookup("crypto-aggs")
	require.True(t, ok)

	path, query, err := cmd.Resolve(map[string]string{
		"ticker":     "X:BTCUSD",
		"multiplier": "1",
		"timespan":   "hour",
		"from":       "2024-01-01",
		"to":         "2024-01-02",
		"limit":      "10",
	})
	require.NoError(t, err)
	assert.Equal(t, "/v2/aggs/ticker/X:BTCUSD/range/1/hour/2024-01-01/2024-01-02", path)
	assert.Equal(t, map[string]string{"adjusted": "true", "limit": "10"}, query)
}

func TestResolveEscapesPathValues(t *testing.T) {
	cmd := Command{
		Name:   "thing",
		Path:   "/v1/things/{id}",
		Params: []Param{{Name: "id", In: Path, Required: true}},
	}
	path, _, err := cmd.Resolve(map[string]string{"id": "a/b c"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/things/a%2Fb%20c", path)
}

func TestResolveMissingRequired(t *testing.T) {
	cmd, _ := Default().Lookup("stocks-aggs")
	_, _, err := cmd.Resolve(map[string]string{"ticker": "AAPL", "multiplier": "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingParam))
	assert.Contains(t, err.Error(), "--multiplier, --timespan, --from, --to")
}

func TestResolveUnknownFlag(t *testing.T) {
	cmd, _ := Default().Lookup("market-status")
	_, _, err := cmd.Resolve(map[string]string{"zeta": "1", "alpha": "2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownParam))
	assert.Contains(t, err.Error(), "--alpha, --zeta")
}

func TestResolveWireKeysAndDefaults(t *testing.T) {
	news, _ := Default().Lookup("news")
	_, query, err := news.Resolve(map[string]string{"ticker": "AAPL", "published-since": "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ticker": "AAPL", "published_utc.gte": "2024-01-01"}, query)

	movers, _ := Default().Lookup("stocks-movers")
	path, query, err := movers.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "/v2/snapshot/locale/us/markets/stocks/gainers", path)
	assert.Empty(t, query)

	sma, _ := Default().Lookup("sma")
	_, query, err = sma.Resolve(map[string]string{"ticker": "AAPL", "series-type": "open"})
	require.NoError(t, err)
	assert.Equal(t, "open", query["series_type"])
	assert.Equal(t, "50", query["window"])
	assert.Equal(t, "day", query["timespan"])
}

func TestUsage(t *testing.T) {
	cmd, _ := Default().Lookup("forex-convert")
	assert.Equal(t, "--from <from> --to <to> [--amount <amount>] [--precision <precision>]", cmd.Usage())

	status, _ := Default().Lookup("market-status")
	assert.Empty(t, status.Usage())
}

func TestUsageBracketsPathParamsWithDefault(t *testing.T) {
	movers, _ := Default().Lookup("stocks-movers")
	assert.Equal(t, "[--direction <direction>] [--include-otc <include-otc>]", movers.Usage())

	path, _, err := movers.Resolve(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "/v2/snapshot/locale/us/markets/stocks/gainers", path)
}

func TestValidateCatchesMismatches(t *testing.T) {
	table := Table{
		{Name: "a", Path: "/v1/{x}/{y}", Params: []Param{{Name: "x", In: Path}, {Name: "z", In: Path}}},
		{Name: "a", Path: "/v1/{q}", Params: []Param{{Name: "q", In: Query}, {Name: "q", In: Query}}},
	}
	err := table.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		`duplicate command "a"`,
		"path flag --z has no {z}",
		"placeholder {y} has no flag",
		"{q} is bound to a query flag",
		"duplicate flag --q",
	} {
		assert.True(t, strings.Contains(msg, want), "expected %q in %q", want, msg)
	}
}

func TestWireKey(t *testing.T) {
	assert.Equal(t, "include_otc", Param{Name: "include-otc"}.WireKey())
	assert.Equal(t, "timestamp.gte", Param{Name: "since", Key: "timestamp.gte"}.WireKey())
}
