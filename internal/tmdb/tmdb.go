package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

func log() *logrus.Entry {
	return logrus.WithField("module", "tmdb")
}

// Client queries The Movie Database for alternative titles. Every lookup
// is best effort: failures are logged and produce an empty result, since a
// missing alternative title must never break a round.
type Client struct {
	// BaseURL is overridable for tests.
	BaseURL string

	apiKey string
	client *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: "https://api.themoviedb.org/3",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// searchLanguages are the locales whose localized titles are accepted as
// alternative answers.
var searchLanguages = []string{"fr-FR", "en-US"}

// AlternativeTitles finds the movie matching title and year and returns
// its localized titles.
func (c *Client) AlternativeTitles(ctx context.Context, title string, year int) []string {
	movieID, ok := c.searchMovie(ctx, title, year)
	if !ok {
		return nil
	}

	var titles []string
	for _, lang := range searchLanguages {
		if localized, ok := c.movieTitle(ctx, movieID, lang); ok && localized != "" {
			titles = append(titles, localized)
		}
	}
	return titles
}

func (c *Client) searchMovie(ctx context.Context, title string, year int) (int, bool) {
	params := url.Values{
		"api_key": {c.apiKey},
		"query":   {title},
		"year":    {strconv.Itoa(year)},
	}

	var result struct {
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/search/movie", params, &result); err != nil {
		log().WithError(err).Warn("movie search failed")
		return 0, false
	}
	if len(result.Results) == 0 {
		return 0, false
	}
	return result.Results[0].ID, true
}

func (c *Client) movieTitle(ctx context.Context, movieID int, lang string) (string, bool) {
	params := url.Values{
		"api_key":  {c.apiKey},
		"language": {lang},
	}

	var result struct {
		Title string `json:"title"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), params, &result); err != nil {
		log().WithError(err).Warn("movie lookup failed")
		return "", false
	}
	return result.Title, true
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
