package wtm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticTitles struct {
	titles []string
}

func (s staticTitles) AlternativeTitles(_ context.Context, _ string, _ int) []string {
	return s.titles
}

const loginPage = `<html><body>
<form action="/user/login" method="post">
<input name="authenticity_token" value="tok-123" />
</form>
</body></html>`

const loggedInPage = `<html><head>
<meta name="csrf-token" content="csrf-456" />
</head><body>
<a href="/user/logout">Logout</a>
</body></html>`

const anonymousPage = `<html><body>
<a href="/user/login">Login</a>
</body></html>`

func shotPage(csrf string, nsfw bool, tags ...string) string {
	page := `<html><head><meta name="csrf-token" content="` + csrf + `" /></head><body>`
	if nsfw {
		page += `<div class="nsfw">NSFW</div>`
	}
	page += `<img id="still_shot" src="/images/shot123.jpg" />`
	page += `<a id="solucebutton" href="/shot/123/solution"></a>`
	page += `<ul id="shot_tag_list">`
	for _, tag := range tags {
		page += fmt.Sprintf(`<li><a href="#">%s</a></li>`, tag)
	}
	page += `</ul></body></html>`
	return page
}

func newTestServer(t *testing.T, solution string, shot string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if r.FormValue("upassword") == "hunter2" {
				fmt.Fprint(w, loggedInPage)
			} else {
				fmt.Fprint(w, anonymousPage)
			}
			return
		}
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/shot/random", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, shot)
	})
	mux.HandleFunc("/shot/123/solution", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
			http.Error(w, "not ajax", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, solution)
	})
	mux.HandleFunc("/images/shot123.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	})
	mux.HandleFunc("/shot/setrandomoptions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-CSRF-Token") == "" {
			http.Error(w, "missing token", http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestSession(server *httptest.Server, titles TitleSource) *Session {
	session := NewSession(titles)
	session.BaseURL = server.URL
	return session
}

func TestLogin_Succeeds(t *testing.T) {
	server := newTestServer(t, "", shotPage("csrf-456", false))
	session := newTestSession(server, staticTitles{})

	if err := session.Login(context.Background(), "alice", "hunter2"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.csrf != "csrf-456" {
		t.Errorf("csrf = %q, want %q", session.csrf, "csrf-456")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	server := newTestServer(t, "", shotPage("csrf-456", false))
	session := newTestSession(server, staticTitles{})

	err := session.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("Login() error = %v, want ErrAuth", err)
	}
}

func TestSetDifficulty(t *testing.T) {
	server := newTestServer(t, "", shotPage("csrf-456", false))
	session := newTestSession(server, staticTitles{})

	if err := session.Login(context.Background(), "alice", "hunter2"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := session.SetDifficulty(context.Background(), DifficultyHard); err != nil {
		t.Errorf("SetDifficulty() error = %v", err)
	}
}

func TestRandomShot_ScrapesSolution(t *testing.T) {
	solution := `setAmazonMovieName("The%20Matrix")<strong>The Matrix (1999)</strong>`
	server := newTestServer(t, solution, shotPage("csrf-456", false))
	session := newTestSession(server, staticTitles{titles: []string{"Matrix"}})

	shot, err := session.RandomShot(context.Background(), true)
	if err != nil {
		t.Fatalf("RandomShot() error = %v", err)
	}
	if shot.Title != "The Matrix" {
		t.Errorf("Title = %q, want %q", shot.Title, "The Matrix")
	}
	if shot.Year != 1999 {
		t.Errorf("Year = %d, want 1999", shot.Year)
	}
	if string(shot.ImageData) != "jpeg-bytes" {
		t.Errorf("ImageData = %q, want image bytes", shot.ImageData)
	}
	if len(shot.AlternativeTitles) != 1 || shot.AlternativeTitles[0] != "Matrix" {
		t.Errorf("AlternativeTitles = %v, want [Matrix]", shot.AlternativeTitles)
	}
}

func TestRandomShot_SingleQuotedTitle(t *testing.T) {
	solution := `setAmazonMovieName('Amelie')<strong>Amelie (2001)</strong>`
	server := newTestServer(t, solution, shotPage("csrf-456", false))
	session := newTestSession(server, staticTitles{})

	shot, err := session.RandomShot(context.Background(), true)
	if err != nil {
		t.Fatalf("RandomShot() error = %v", err)
	}
	if shot.Title != "Amelie" {
		t.Errorf("Title = %q, want %q", shot.Title, "Amelie")
	}
}

func TestRandomShot_SkipsNsfwShots(t *testing.T) {
	server := newTestServer(t, "", shotPage("csrf-456", true))
	session := newTestSession(server, staticTitles{})

	// Every served shot is NSFW, so the fetch loop can only end through
	// the expiring context.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := session.RandomShot(ctx, false); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RandomShot() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRandomShot_SkipsExcludedTags(t *testing.T) {
	server := newTestServer(t, "", shotPage("csrf-456", false, "winter", "Nudity"))
	session := newTestSession(server, staticTitles{})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := session.RandomShot(ctx, false); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RandomShot() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestUnescapeJSUnicode(t *testing.T) {
	got := unescapeJSUnicode(`Amélie`)
	if got != "Amélie" {
		t.Errorf("unescapeJSUnicode() = %q, want %q", got, "Amélie")
	}
}
