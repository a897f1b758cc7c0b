package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"FinSent/internal/breaker"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Yahoo! Finance: AAPL News</title>
<item><title>Apple beats earnings expectations</title><link>https://example.com/1</link></item>
<item><title>  Apple faces antitrust lawsuit  </title><link>https://example.com/2</link></item>
<item><title></title><link>https://example.com/empty</link></item>
<item><title>Apple unveils new iPhone</title><link>https://example.com/3</link></item>
<item><title>Analysts split on Apple outlook</title><link>https://example.com/4</link></item>
</channel>
</rss>`

func newFeedServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func okFeed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/rss+xml")
	fmt.Fprint(w, feedXML)
}

func TestFeedURL(t *testing.T) {
	f := NewRSSFetcher(Options{}, nil, nil, nil)
	want := "https://feeds.finance.yahoo.com/rss/2.0/headline?s=RELIANCE.NS&region=US&lang=en-US"
	if got := f.FeedURL("RELIANCE.NS"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got := f.FeedURL("^GSPC"); !strings.Contains(got, "s=%5EGSPC&") {
		t.Errorf("ticker should be query-escaped, got %s", got)
	}
}

func TestFetch_PreservesOrderAndTruncates(t *testing.T) {
	var query string
	srv, _ := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		okFeed(w, r)
	})
	f := NewRSSFetcher(Options{BaseURL: srv.URL}, nil, zaptest.NewLogger(t), nil)

	got := f.Fetch(context.Background(), "AAPL", 3)
	want := []string{
		"Apple beats earnings expectations",
		"Apple faces antitrust lawsuit",
		"Apple unveils new iPhone",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d headlines, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("headline %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if query != "s=AAPL&region=US&lang=en-US" {
		t.Errorf("unexpected query %s", query)
	}
}

func TestFetch_FewerItemsThanMax(t *testing.T) {
	srv, _ := newFeedServer(t, okFeed)
	f := NewRSSFetcher(Options{BaseURL: srv.URL}, nil, nil, nil)

	if got := f.Fetch(context.Background(), "AAPL", 50); len(got) != 4 {
		t.Errorf("expected all 4 non-empty titles, got %d", len(got))
	}
}

func TestFetch_ZeroMaxSkipsNetwork(t *testing.T) {
	srv, hits := newFeedServer(t, okFeed)
	f := NewRSSFetcher(Options{BaseURL: srv.URL}, nil, nil, nil)

	got := f.Fetch(context.Background(), "AAPL", 0)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("no request expected for maxItems=0")
	}
}

func TestFetch_FailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }},
		{"malformed feed", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html><body>not a feed") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newFeedServer(t, tt.handler)
			f := NewRSSFetcher(Options{BaseURL: srv.URL}, nil, zaptest.NewLogger(t), nil)
			got := f.Fetch(context.Background(), "AAPL", 5)
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty slice, got %#v", got)
			}
		})
	}
}

func TestFetch_NetworkDown(t *testing.T) {
	srv, _ := newFeedServer(t, okFeed)
	base := srv.URL
	srv.Close()

	f := NewRSSFetcher(Options{BaseURL: base}, nil, nil, nil)
	if got := f.Fetch(context.Background(), "AAPL", 5); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestFetch_CancelledContextDuringRateLimit(t *testing.T) {
	srv, hits := newFeedServer(t, okFeed)
	f := NewRSSFetcher(Options{BaseURL: srv.URL, RequestsPerSecond: 0.001, Burst: 1}, nil, nil, nil)

	if got := f.Fetch(context.Background(), "AAPL", 5); len(got) != 4 {
		t.Fatalf("first call should use the burst token, got %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := f.Fetch(ctx, "AAPL", 5); len(got) != 0 {
		t.Errorf("expected empty slice when limiter wait is cancelled, got %v", got)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Errorf("expected exactly one upstream request, got %d", atomic.LoadInt32(hits))
	}
}

func TestFetch_ZeroRateDisablesLimiter(t *testing.T) {
	srv, hits := newFeedServer(t, okFeed)
	f := NewRSSFetcher(Options{BaseURL: srv.URL, RequestsPerSecond: 0, Burst: 1}, nil, nil, nil)
	if f.limiter != nil {
		t.Fatal("expected no limiter for a zero rate")
	}
	for i := 0; i < 5; i++ {
		if got := f.Fetch(context.Background(), "AAPL", 5); len(got) != 4 {
			t.Fatalf("call %d: expected 4 headlines without throttling, got %v", i, got)
		}
	}
	if atomic.LoadInt32(hits) != 5 {
		t.Errorf("expected 5 upstream requests, got %d", atomic.LoadInt32(hits))
	}
}

func TestFetch_RejectedFeedDoesNotTripBreaker(t *testing.T) {
	cfg := breaker.Config{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}
	var status int32 = http.StatusNotFound
	srv, _ := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if code := atomic.LoadInt32(&status); code != http.StatusOK {
			w.WriteHeader(int(code))
			return
		}
		okFeed(w, r)
	})
	reg := breaker.NewRegistry(cfg, nil, nil)
	f := NewRSSFetcher(Options{BaseURL: srv.URL}, reg, nil, nil)

	for i := 0; i < 5; i++ {
		if got := f.Fetch(context.Background(), "BADTICKER", 5); len(got) != 0 {
			t.Fatalf("expected empty slice for 404, got %v", got)
		}
	}
	atomic.StoreInt32(&status, http.StatusOK)
	if got := f.Fetch(context.Background(), "AAPL", 5); len(got) != 4 {
		t.Errorf("breaker should stay closed after 404s, got %v", got)
	}

	atomic.StoreInt32(&status, http.StatusServiceUnavailable)
	for i := 0; i < 8; i++ {
		f.Fetch(context.Background(), "AAPL", 5)
	}
	if st := reg.Status()[breaker.YahooRSS]; st.State != "open" {
		t.Errorf("expected 5xx replies to open the breaker, got %q", st.State)
	}
}
