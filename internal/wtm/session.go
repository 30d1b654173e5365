package wtm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// ErrAuth means whatthemovie.com rejected the configured credentials.
var ErrAuth = errors.New("whatthemovie login rejected")

// TitleSource provides alternative accepted titles for a movie. Lookups
// degrade to an empty set on failure, they never fail a round.
type TitleSource interface {
	AlternativeTitles(ctx context.Context, title string, year int) []string
}

// Shots tagged with any of these are never served.
var excludedTags = map[string]struct{}{
	"nude":   {},
	"nudity": {},
	"boob":   {},
	"boobs":  {},
}

var (
	jsUnicodeRe = regexp.MustCompile(`\\u([0-9a-f]{4})`)
	// Go regexps have no backreferences, so each quote style gets its own
	// alternative.
	titleRe = regexp.MustCompile(`setAmazonMovieName\("(.*)"\)|setAmazonMovieName\('(.*)'\)`)
	yearRe  = regexp.MustCompile(`<strong>.+\((\d+)\)</strong>`)
)

func log() *logrus.Entry {
	return logrus.WithField("module", "wtm")
}

// Session is an authenticated scraping session against whatthemovie.com.
type Session struct {
	// BaseURL is overridable for tests.
	BaseURL string

	client *http.Client
	titles TitleSource
	csrf   string
}

func NewSession(titles TitleSource) *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		BaseURL: "https://whatthemovie.com",
		client:  &http.Client{Jar: jar, Timeout: 30 * time.Second},
		titles:  titles,
	}
}

// Login authenticates against the site and captures the CSRF token used
// by all later form posts. Returns ErrAuth on bad credentials.
func (s *Session) Login(ctx context.Context, username, password string) error {
	loginURL := s.BaseURL + "/user/login"

	doc, _, err := s.getDocument(ctx, loginURL)
	if err != nil {
		return fmt.Errorf("fetching login page: %w", err)
	}
	token, ok := doc.Find("input[name='authenticity_token']").Attr("value")
	if !ok {
		return fmt.Errorf("login page carries no authenticity token")
	}

	form := url.Values{
		"name":               {username},
		"upassword":          {password},
		"authenticity_token": {token},
		"utf8":               {"✓"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting login form: %w", err)
	}
	defer resp.Body.Close()

	doc, err = goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parsing login response: %w", err)
	}
	if doc.Find("a[href='/user/logout']").Length() == 0 {
		return ErrAuth
	}
	csrf, ok := doc.Find("meta[name='csrf-token']").Attr("content")
	if !ok {
		return fmt.Errorf("login response carries no csrf token")
	}
	s.csrf = csrf

	log().WithField("user", username).Info("logged in to whatthemovie.com")
	return nil
}

// SetDifficulty configures the server-side random shot filter.
func (s *Session) SetDifficulty(ctx context.Context, difficulty Difficulty) error {
	form := url.Values{
		"difficulty":      {string(difficulty)},
		"keyword":         {""},
		"include_archive": {"1"},
		"include_solved":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/shot/setrandomoptions", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building difficulty request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", s.csrf)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("setting difficulty: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("setting difficulty: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// RandomShot fetches shots until one passes the NSFW and tag filters and,
// when requireSolution is set, has a published solution. The retry loop is
// unbounded on purpose: the remote pool decides when it yields a usable
// shot, and only context cancellation breaks out.
func (s *Session) RandomShot(ctx context.Context, requireSolution bool) (*Shot, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shot, err := s.randomShot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log().WithError(err).Warn("fetching shot failed, retrying")
			continue
		}
		if shot == nil {
			// rejected by the NSFW or tag filter
			continue
		}
		if requireSolution && shot.Title == "" {
			continue
		}
		return shot, nil
	}
}

// randomShot scrapes a single shot page. A nil, nil return means the shot
// was filtered out and the caller should try again.
func (s *Session) randomShot(ctx context.Context) (*Shot, error) {
	doc, pageURL, err := s.getDocument(ctx, s.BaseURL+"/shot/random")
	if err != nil {
		return nil, fmt.Errorf("fetching random shot: %w", err)
	}

	imageURL, ok := doc.Find("#still_shot").Attr("src")
	if !ok {
		return nil, fmt.Errorf("shot page has no still image")
	}
	if strings.HasPrefix(imageURL, "/") {
		imageURL = s.BaseURL + imageURL
	}

	if doc.Find("div.nsfw").Length() > 0 {
		return nil, nil
	}
	rejected := false
	doc.Find("#shot_tag_list li a").Each(func(_ int, sel *goquery.Selection) {
		if _, bad := excludedTags[strings.ToLower(strings.TrimSpace(sel.Text()))]; bad {
			rejected = true
		}
	})
	if rejected {
		return nil, nil
	}

	shot := &Shot{ImageURL: imageURL}

	if solutionURL, ok := doc.Find("#solucebutton").Attr("href"); ok {
		pageCSRF, _ := doc.Find("meta[name='csrf-token']").Attr("content")
		if err := s.fillSolution(ctx, shot, solutionURL, pageURL, pageCSRF); err != nil {
			return nil, err
		}
	}

	shot.ImageData, err = s.getImage(ctx, imageURL, pageURL)
	if err != nil {
		return nil, err
	}
	return shot, nil
}

// fillSolution resolves the shot's title and year from the solution
// endpoint and enriches the shot with alternative titles.
func (s *Session) fillSolution(ctx context.Context, shot *Shot, solutionURL, referer, pageCSRF string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+solutionURL, nil)
	if err != nil {
		return fmt.Errorf("building solution request: %w", err)
	}
	req.Header.Set("Referer", referer)
	req.Header.Set("X-CSRF-Token", pageCSRF)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching solution: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading solution: %w", err)
	}
	code := unescapeJSUnicode(string(body))

	titleMatch := titleRe.FindStringSubmatch(code)
	yearMatch := yearRe.FindStringSubmatch(code)
	if titleMatch == nil || yearMatch == nil {
		return nil
	}

	rawTitle := titleMatch[1]
	if rawTitle == "" {
		rawTitle = titleMatch[2]
	}
	title, err := url.QueryUnescape(strings.TrimSpace(rawTitle))
	if err != nil {
		title = strings.TrimSpace(rawTitle)
	}
	year, _ := strconv.Atoi(yearMatch[1])

	shot.Title = title
	shot.Year = year
	for _, alt := range s.titles.AlternativeTitles(ctx, title, year) {
		if alt != "" && alt != title {
			shot.AlternativeTitles = append(shot.AlternativeTitles, alt)
		}
	}
	return nil
}

func (s *Session) getImage(ctx context.Context, imageURL, referer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building image request: %w", err)
	}
	req.Header.Set("Referer", referer)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching shot image: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading shot image: %w", err)
	}
	return data, nil
}

// getDocument fetches a page, following redirects, and returns the parsed
// document together with the final URL (used as Referer by later calls).
func (s *Session) getDocument(ctx context.Context, pageURL string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	return doc, resp.Request.URL.String(), nil
}

// unescapeJSUnicode replaces \uXXXX escapes in inline javascript with the
// runes they encode.
func unescapeJSUnicode(s string) string {
	return jsUnicodeRe.ReplaceAllStringFunc(s, func(match string) string {
		code, err := strconv.ParseInt(match[2:], 16, 32)
		if err != nil {
			return match
		}
		return string(rune(code))
	})
}
