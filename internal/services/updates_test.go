package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pressReleasePage = `
<html><body>
  <article>
    <h2>Disaster Declaration Issued</h2>
    <p>Federal funding is now available for affected counties.</p>
    <a href="/press-release/declaration">Read more</a>
  </article>
  <article>
    <h2>Shelters Opening</h2>
    <p>Three emergency shelters open tonight.</p>
    <a href="https://example.org/shelters">Read more</a>
  </article>
  <article>
    <h2></h2>
    <p>Entry without a title is skipped.</p>
  </article>
</body></html>`

func newTestUpdatesService(clock clockwork.Clock, sources map[string]string) *UpdatesService {
	return &UpdatesService{
		cache:      NewMemoryCache(clock),
		httpClient: &http.Client{Timeout: time.Second},
		sources:    sources,
		clock:      clock,
		cacheTTL:   30 * time.Minute,
	}
}

func TestExtractUpdates(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pressReleasePage))
	require.NoError(t, err)

	svc := newTestUpdatesService(clockwork.NewFakeClock(), nil)
	updates := svc.extractUpdates(doc, "fema", "https://www.fema.gov/news-release")

	require.Len(t, updates, 2, "untitled entries are skipped")
	assert.Equal(t, "FEMA", updates[0].Source)
	assert.Equal(t, "Disaster Declaration Issued", updates[0].Title)
	assert.Equal(t, "https://www.fema.gov/press-release/declaration", updates[0].Link)
	assert.Equal(t, "https://example.org/shelters", updates[1].Link)
	assert.Equal(t, "official", updates[0].Type)
}

func TestExtractUpdates_CapsAtFive(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 8; i++ {
		b.WriteString(`<article><h2>Title</h2><p>Summary text.</p></article>`)
	}
	b.WriteString("</body></html>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	require.NoError(t, err)

	svc := newTestUpdatesService(clockwork.NewFakeClock(), nil)
	updates := svc.extractUpdates(doc, "cdc", "https://www.cdc.gov")

	assert.Len(t, updates, 5)
}

func TestExtractUpdates_TruncatesLongSummaries(t *testing.T) {
	long := strings.Repeat("a", 300)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<article><h2>Title</h2><p>" + long + "</p></article>"))
	require.NoError(t, err)

	svc := newTestUpdatesService(clockwork.NewFakeClock(), nil)
	updates := svc.extractUpdates(doc, "fema", "https://www.fema.gov")

	require.Len(t, updates, 1)
	assert.Len(t, updates[0].Summary, 203) // 200 chars plus ellipsis
}

func TestResolveLink(t *testing.T) {
	assert.Equal(t, "https://www.fema.gov/a/b", resolveLink("https://www.fema.gov/news", "/a/b"))
	assert.Equal(t, "https://other.org/x", resolveLink("https://www.fema.gov/news", "https://other.org/x"))
	assert.Equal(t, "https://www.fema.gov/news", resolveLink("https://www.fema.gov/news", ""))
}

func TestGetOfficialUpdates_ScrapesAndSorts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(pressReleasePage))
	}))
	defer server.Close()

	svc := newTestUpdatesService(clockwork.NewFakeClock(), map[string]string{"fema": server.URL})
	updates := svc.GetOfficialUpdates(context.Background(), "")

	require.Len(t, updates, 2)
	for i := 1; i < len(updates); i++ {
		assert.False(t, updates[i].Date.After(updates[i-1].Date), "newest first")
	}
}

func TestGetOfficialUpdates_FallsBackToMock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := newTestUpdatesService(clockwork.NewFakeClock(), map[string]string{"fema": server.URL})
	updates := svc.GetOfficialUpdates(context.Background(), "d1")

	require.Len(t, updates, 3, "fixed entries stand in when every source fails")
	assert.Equal(t, "FEMA", updates[0].Source)
	for i := 1; i < len(updates); i++ {
		assert.False(t, updates[i].Date.After(updates[i-1].Date))
	}
}

func TestGetOfficialUpdates_Caches(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(pressReleasePage))
	}))
	defer server.Close()

	svc := newTestUpdatesService(clockwork.NewFakeClock(), map[string]string{"fema": server.URL})

	svc.GetOfficialUpdates(context.Background(), "d1")
	svc.GetOfficialUpdates(context.Background(), "d1")

	assert.Equal(t, 1, hits, "second call must come from cache")
}
