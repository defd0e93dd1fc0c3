package admin_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alen-Aazim/Yesgee/internal/admin"
	"github.com/Alen-Aazim/Yesgee/internal/catalog"
)

func newConsoleTS(t *testing.T, passwordHash string) (*httptest.Server, *catalog.FileStore) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products-db.json")
	store := catalog.NewFileStore(path)
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	console := &admin.Server{
		Store:        store,
		Log:          zap.NewNop(),
		Sessions:     admin.NewSessionMaker("test-secret"),
		PasswordHash: passwordHash,
	}

	api := &catalog.Server{Store: store, Log: zap.NewNop()}
	h := catalog.NewHandler(api, console.Routes(), catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts, store
}

// noRedirect stops the client from following 3xx so tests can assert on
// the redirect itself.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestConsole_SaveCreatesProductWithDefaults(t *testing.T) {
	ts, store := newConsoleTS(t, "")
	c := noRedirect()

	resp, err := c.PostForm(ts.URL+"/admin/products/save", url.Values{
		"title": {"Pen"},
		"price": {"9.5"},
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin/products" {
		t.Fatalf("location=%q", loc)
	}

	products, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("len=%d, want 1", len(products))
	}
	p := products[0]
	if p.ID == "" || p.Title != "Pen" || p.Price != 9.5 {
		t.Fatalf("saved product wrong: %#v", p)
	}
	if p.Image != catalog.PlaceholderImage {
		t.Fatalf("image=%q, want placeholder", p.Image)
	}
}

func TestConsole_SaveUnparseablePriceBecomesZero(t *testing.T) {
	ts, store := newConsoleTS(t, "")
	c := noRedirect()

	resp, err := c.PostForm(ts.URL+"/admin/products/save", url.Values{
		"title": {"Mystery"},
		"price": {"not-a-number"},
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", resp.StatusCode)
	}

	products, _ := store.LoadAll(context.Background())
	if len(products) != 1 || products[0].Price != 0 {
		t.Fatalf("price not coerced to 0: %#v", products)
	}
}

func TestConsole_SaveRequiresTitle(t *testing.T) {
	ts, store := newConsoleTS(t, "")
	c := noRedirect()

	resp, err := c.PostForm(ts.URL+"/admin/products/save", url.Values{
		"price": {"5"},
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", resp.StatusCode)
	}

	products, _ := store.LoadAll(context.Background())
	if len(products) != 0 {
		t.Fatalf("nothing should be saved: %#v", products)
	}
}

func TestConsole_EditAbsentRedirectsToListing(t *testing.T) {
	ts, _ := newConsoleTS(t, "")
	c := noRedirect()

	resp, err := c.Get(ts.URL + "/admin/products/edit/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin/products" {
		t.Fatalf("location=%q", loc)
	}
}

func TestConsole_DeleteAbsentIsBenign(t *testing.T) {
	ts, store := newConsoleTS(t, "")
	seedStore(t, store, catalog.Product{ID: "p1", Title: "Pen"})
	c := noRedirect()

	resp, err := c.PostForm(ts.URL+"/admin/products/delete/missing", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", resp.StatusCode)
	}

	products, _ := store.LoadAll(context.Background())
	if len(products) != 1 {
		t.Fatalf("collection changed: %#v", products)
	}
}

func TestConsole_ListingShowsProducts(t *testing.T) {
	ts, store := newConsoleTS(t, "")
	seedStore(t, store, catalog.Product{ID: "p1", Title: "Fountain Pen", Price: 99})

	resp, err := http.Get(ts.URL + "/admin/products")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Fountain Pen") {
		t.Fatalf("listing does not show the product:\n%s", body)
	}
}

func TestConsole_EditFormShowsProduct(t *testing.T) {
	ts, store := newConsoleTS(t, "")
	seedStore(t, store, catalog.Product{ID: "p1", Title: "Fountain Pen", Description: "gold nib"})

	resp, err := http.Get(ts.URL + "/admin/products/edit/p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "gold nib") {
		t.Fatalf("status=%d body:\n%s", resp.StatusCode, body)
	}
}

func TestConsole_LoginFlow(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	ts, _ := newConsoleTS(t, string(hash))
	c := noRedirect()

	// Unauthenticated requests bounce to the login page.
	resp, err := c.Get(ts.URL + "/admin/products")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/login" {
		t.Fatalf("status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, err = c.PostForm(ts.URL+"/admin/login", url.Values{"password": {"wrong"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status=%d, want 401", resp.StatusCode)
	}

	resp, err = c.PostForm(ts.URL+"/admin/login", url.Values{"password": {"s3cret-pass"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status=%d, want 303", resp.StatusCode)
	}

	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == admin.SessionCookie {
			session = ck
		}
	}
	if session == nil {
		t.Fatalf("no session cookie set")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/admin/products", nil)
	req.AddCookie(session)
	resp, err = c.Do(req)
	if err != nil {
		t.Fatalf("get with session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status=%d, want 200", resp.StatusCode)
	}
}

func seedStore(t *testing.T, store *catalog.FileStore, products ...catalog.Product) {
	t.Helper()
	if err := store.ReplaceAll(context.Background(), products); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
