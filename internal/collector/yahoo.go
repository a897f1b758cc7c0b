package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"FinSent/internal/breaker"
	"FinSent/internal/model"
)

// DefaultChartBaseURL is the Yahoo Finance chart API host.
const DefaultChartBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultChartBaseURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				GMTOffset            int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toFloat reports ok=false for JSON nulls and missing values.
func toFloat(vals []interface{}, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	switch n := vals[i].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

var locations sync.Map // zone name -> *time.Location

// exchangeLocation resolves the exchange timezone, falling back to the fixed
// GMT offset and finally UTC. Loaded zones are reused so repeated fetches
// return identical times.
func exchangeLocation(name string, offset int) *time.Location {
	if name != "" {
		if loc, ok := locations.Load(name); ok {
			return loc.(*time.Location)
		}
		if loc, err := time.LoadLocation(name); err == nil {
			actual, _ := locations.LoadOrStore(name, loc)
			return actual.(*time.Location)
		}
	}
	if offset != 0 {
		return time.FixedZone(name, offset)
	}
	return time.UTC
}

// statusError marks 4xx replies other than 429 as rejected requests.
func statusError(code int, err error) error {
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return &breaker.RequestError{StatusCode: code, Err: err}
	}
	return err
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, ticker string, period model.Period, interval model.Interval) ([]model.PriceBar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(ticker), url.QueryEscape(string(interval)), url.QueryEscape(string(period)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, statusError(resp.StatusCode, fmt.Errorf("yahoo: status %d", resp.StatusCode))
		}
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		apiErr := fmt.Errorf("yahoo api error: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, apiErr
		}
		return nil, &breaker.RequestError{StatusCode: resp.StatusCode, Err: apiErr}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, fmt.Errorf("yahoo: status %d", resp.StatusCode))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	loc := exchangeLocation(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)
	bars := make([]model.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c, ok := toFloat(quote.Close, i)
		if !ok {
			continue // null bar (holiday, halted session)
		}
		o, _ := toFloat(quote.Open, i)
		h, _ := toFloat(quote.High, i)
		l, _ := toFloat(quote.Low, i)
		v, _ := toFloat(quote.Volume, i)
		bars = append(bars, model.PriceBar{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
