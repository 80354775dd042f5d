package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"localch-scraper/internal/config"
	"localch-scraper/internal/crawler"
	"localch-scraper/internal/models"
	"localch-scraper/internal/output"
	"localch-scraper/mocks"
)

// fakeSite serves a one-page search result with two bakeries and a robots.txt.
func fakeSite(t *testing.T, robots string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/robots.txt":
			fmt.Fprint(w, robots)
		case r.URL.Path == "/en/s/bakery" && r.URL.Query().Get("page") == "1":
			fmt.Fprint(w, `<html><body>
<a href="/en/d/zurich/8001/bakery/beck-one">Beck One</a>
<a href="/en/d/bern/3011/bakery/beck-two">Beck Two</a>
<a href="/en/d/zurich/8001/bakery/beck-one">Beck One again</a>
</body></html>`)
		case r.URL.Path == "/en/s/bakery":
			fmt.Fprint(w, `<html><body>No more results</body></html>`)
		case r.URL.Path == "/en/d/zurich/8001/bakery/beck-one":
			fmt.Fprint(w, `<html><body><h1>Beck One</h1><address>Bahnhofstrasse 1, 8001 Zürich</address>
<a href="tel:+41441112233">044 111 22 33</a><a href="mailto:hello@beck-one.ch">hello@beck-one.ch</a></body></html>`)
		case r.URL.Path == "/en/d/bern/3011/bakery/beck-two":
			fmt.Fprint(w, `<html><body><h1>Beck Two</h1></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(server *httptest.Server, outDir string) config.Config {
	cfg := config.Default()
	cfg.BaseURL = server.URL + "/en/s/"
	cfg.SiteRoot = server.URL
	cfg.OutputDir = outDir
	cfg.MaxListings = 2
	cfg.Threads = 4
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func TestRunWritesCSV(t *testing.T) {
	server := fakeSite(t, "")
	outDir := filepath.Join(t.TempDir(), "output")

	p := New(testConfig(server, outDir), Deps{Sleep: noSleep}, zerolog.Nop())
	summary, err := p.Run(context.Background(), "bakery")
	require.NoError(t, err)
	require.Equal(t, 2, summary.URLs)
	require.Equal(t, 2, summary.Records)
	require.Equal(t, filepath.Join(outDir, "bakery_localch_results.csv"), summary.OutputPath)
	require.NotEmpty(t, summary.RunID)

	raw, err := os.ReadFile(summary.OutputPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Name,Address,Phone,Email,URL", lines[0])

	records, err := output.Read(summary.OutputPath)
	require.NoError(t, err)
	byURL := map[string]models.ListingRecord{}
	for _, r := range records {
		byURL[r.URL] = r
	}
	one := byURL[server.URL+"/en/d/zurich/8001/bakery/beck-one"]
	require.Equal(t, models.ListingRecord{
		Name:    "Beck One",
		Address: "Bahnhofstrasse 1, 8001 Zürich",
		Phone:   "044 111 22 33",
		Email:   "hello@beck-one.ch",
		URL:     server.URL + "/en/d/zurich/8001/bakery/beck-one",
	}, one)
	two := byURL[server.URL+"/en/d/bern/3011/bakery/beck-two"]
	require.Equal(t, "Beck Two", two.Name)
	require.Equal(t, models.NotAvailable, two.Address)
	require.Equal(t, models.NotAvailable, two.Phone)
	require.Equal(t, models.NotAvailable, two.Email)
}

func TestRunKeywordWithSpaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	t.Cleanup(server.Close)

	outDir := t.TempDir()
	summary, err := New(testConfig(server, outDir), Deps{Sleep: noSleep}, zerolog.Nop()).
		Run(context.Background(), "  swiss cheese  ")
	require.NoError(t, err)
	require.Equal(t, 0, summary.Records)
	require.Equal(t, filepath.Join(outDir, "swiss_cheese_localch_results.csv"), summary.OutputPath)

	records, err := output.Read(summary.OutputPath)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestRunEmptyKeyword(t *testing.T) {
	p := New(config.Default(), Deps{}, zerolog.Nop())
	_, err := p.Run(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyKeyword)
}

func TestRunReportsStagesAndPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	server := fakeSite(t, "")
	status := mocks.NewMockStatusStore(ctrl)
	publisher := mocks.NewMockListingPublisher(ctrl)

	var mu sync.Mutex
	var stages []models.RunStage
	status.EXPECT().SetStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s models.RunStatus) error {
			mu.Lock()
			defer mu.Unlock()
			stages = append(stages, s.Stage)
			require.Equal(t, "bakery", s.Keyword)
			if s.Stage == models.StageDone {
				require.Equal(t, 2, s.URLsCollected)
				require.Equal(t, 2, s.RecordsScraped)
				require.NotEmpty(t, s.OutputPath)
			}
			return nil
		}).Times(4)
	publisher.EXPECT().WriteListing(gomock.Any(), gomock.Any(), "bakery", gomock.Any()).Return(nil).Times(2)

	p := New(testConfig(server, t.TempDir()), Deps{Publisher: publisher, Status: status, Sleep: noSleep}, zerolog.Nop())
	_, err := p.Run(context.Background(), "bakery")
	require.NoError(t, err)
	require.Equal(t, []models.RunStage{
		models.StageCollecting, models.StageScraping, models.StageWriting, models.StageDone,
	}, stages)
}

func TestRunStatusStoreFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	server := fakeSite(t, "")
	status := mocks.NewMockStatusStore(ctrl)
	status.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Return(errors.New("redis down")).AnyTimes()

	summary, err := New(testConfig(server, t.TempDir()), Deps{Status: status, Sleep: noSleep}, zerolog.Nop()).
		Run(context.Background(), "bakery")
	require.NoError(t, err)
	require.Equal(t, 2, summary.Records)
}

func TestRunRobotsDisallowsSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	server := fakeSite(t, "User-agent: *\nDisallow: /en/s/\n")
	status := mocks.NewMockStatusStore(ctrl)
	var last models.RunStatus
	status.EXPECT().SetStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s models.RunStatus) error {
			last = s
			return nil
		}).Times(2)

	cfg := testConfig(server, t.TempDir())
	cfg.RespectRobots = true
	_, err := New(cfg, Deps{Status: status, Sleep: noSleep}, zerolog.Nop()).Run(context.Background(), "bakery")
	require.ErrorIs(t, err, crawler.ErrSearchDisallowed)
	require.Equal(t, models.StageFailed, last.Stage)
	require.Contains(t, last.Error, "robots.txt")
}

func TestRunOutputFailure(t *testing.T) {
	server := fakeSite(t, "")
	blocker := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	_, err := New(testConfig(server, blocker), Deps{Sleep: noSleep}, zerolog.Nop()).
		Run(context.Background(), "bakery")
	require.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	server := fakeSite(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outDir := t.TempDir()
	_, err := New(testConfig(server, outDir), Deps{Sleep: noSleep}, zerolog.Nop()).Run(ctx, "bakery")
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(filepath.Join(outDir, "bakery_localch_results.csv"))
	require.True(t, os.IsNotExist(statErr))
}

func TestRunMissingRobotsAllowsAll(t *testing.T) {
	site := fakeSite(t, "")
	var robotsHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsHits, 1)
			http.NotFound(w, r)
			return
		}
		site.Config.Handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server, t.TempDir())
	cfg.RespectRobots = true
	summary, err := New(cfg, Deps{Sleep: noSleep}, zerolog.Nop()).Run(context.Background(), "bakery")
	require.NoError(t, err)
	require.Equal(t, 2, summary.Records)
	require.Equal(t, int32(1), atomic.LoadInt32(&robotsHits))
}
