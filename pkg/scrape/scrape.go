package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Both upstream sites are protected by the same ASP.NET search form:
// a GET page carrying hidden tokens which must be replayed as a POST
// to a results endpoint. The sites get angry without a browser-looking
// user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrRedirectStub is returned when the results endpoint answers with a
// client-side redirect instead of data. That happens when the search
// flags from the page are replayed verbatim instead of forced.
var ErrRedirectStub = errors.New("results endpoint returned a client-side redirect stub")

// StatusError is any non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// Client performs the two-phase load-then-replay protocol. Each call
// has a single attempt bounded by the client timeout; advancing to the
// next source tier is the retry strategy.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPage GETs a subject's canonical page.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &StatusError{Code: response.StatusCode}
	}

	return goquery.NewDocumentFromReader(response.Body)
}

// HarvestFields collects the hidden form inputs, looked up by name
// then by id, skipping absent fields.
func HarvestFields(document *goquery.Document, names []string) url.Values {
	form := url.Values{}

	for _, name := range names {
		input := document.Find(fmt.Sprintf("input[name=%s]", name)).First()
		if input.Length() == 0 {
			input = document.Find("input#" + name).First()
		}
		if input.Length() == 0 {
			continue
		}

		value, _ := input.Attr("value")
		form.Set(name, value)
	}

	return form
}

// ForceSearchFlags overrides the two search-control flags. The page's
// own defaults make the results endpoint answer with a redirect stub
// instead of data, so they must never be replayed verbatim.
func ForceSearchFlags(form url.Values) {
	form.Set("IsSearchWanted", "True")
	form.Set("IsReCaptchaFailed", "False")
}

// PostResults replays the harvested form against the results endpoint
// and parses the returned fragment. A redirect stub is an error, never
// a success.
func (c *Client) PostResults(ctx context.Context, resultsURL string, referer string, form url.Values) (*goquery.Document, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, resultsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Referer", referer)
	request.Header.Set("X-Requested-With", "XMLHttpRequest")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &StatusError{Code: response.StatusCode}
	}

	document, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return nil, err
	}

	if IsRedirectStub(document) {
		return nil, ErrRedirectStub
	}

	return document, nil
}

// IsRedirectStub detects the anti-automation response: a near-empty
// body whose script assigns window.location.
func IsRedirectStub(document *goquery.Document) bool {
	text := document.Text()
	if len(text) > 500 {
		text = text[:500]
	}

	return strings.Contains(text, "window.location")
}
