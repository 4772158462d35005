package web

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"fridge-chef/internal/recipe"
	"fridge-chef/internal/session"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSuggester struct {
	mu      sync.Mutex
	calls   int
	recipes []recipe.Recipe
	err     error
}

func (s *stubSuggester) Suggest(_ context.Context, _ []string) ([]recipe.Recipe, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.recipes, s.err
}

func (s *stubSuggester) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestServer(t *testing.T, suggester *stubSuggester) *testClient {
	t.Helper()
	srv, err := NewServer(session.NewRegistry(suggester, time.Hour), []byte("test-secret"), time.Hour, 5*time.Second)
	require.NoError(t, err)

	router := NewRouter()
	srv.RegisterHandlers(router)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: ts.URL, client: &http.Client{Jar: jar}}
}

func (c *testClient) get(path string) *goquery.Document {
	c.t.Helper()
	resp, err := c.client.Get(c.base + path)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(c.t, err)
	return doc
}

func (c *testClient) post(path string, form url.Values) *goquery.Document {
	c.t.Helper()
	resp, err := c.client.PostForm(c.base+path, form)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(c.t, err)
	return doc
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

func sampleRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		{
			ID: "trung-1-0", Name: "Trứng chiên hành", Description: "Món nhanh gọn",
			CookingTime: "10 phút", Difficulty: "Dễ", Calories: "250",
			UsedIngredients:    []string{"Trứng"},
			MissingIngredients: []string{"Hành lá", "Nước mắm"},
			Steps:              []string{"Đập trứng", "Chiên"},
		},
		{
			ID: "canh-1-1", Name: "Canh cà chua", Description: "Thanh mát",
			CookingTime: "20 phút", Difficulty: "Dễ", Calories: "120",
			UsedIngredients: []string{"Cà chua", "Trứng"},
			Steps:           []string{"Nấu nước", "Thả cà chua"},
		},
	}
}

func TestRootRedirectsToFridge(t *testing.T) {
	c := newTestServer(t, &stubSuggester{})
	doc := c.get("/")

	assert.Equal(t, "FRIDGE", doc.Find("#view").AttrOr("data-view", ""))
	assert.Equal(t, 7, doc.Find("#suggestions .suggestion").Length())
	_, disabled := doc.Find("#find-recipes button").Attr("disabled")
	assert.True(t, disabled)
}

func TestFridgeAddAndRemove(t *testing.T) {
	c := newTestServer(t, &stubSuggester{})

	c.post("/fridge/ingredients", url.Values{"name": {"   "}})
	doc := c.post("/fridge/suggestions", url.Values{"name": {"Trứng"}})
	doc = c.post("/fridge/ingredients", url.Values{"name": {"  Thịt bò  "}})

	assert.Equal(t, []string{"Trứng", "Thịt bò"}, texts(doc.Find("#ingredients .name")))
	assert.Zero(t, doc.Find("#suggestions").Length(), "suggestions hide once the fridge has items")
	_, disabled := doc.Find("#find-recipes button").Attr("disabled")
	assert.False(t, disabled)

	id := doc.Find("#ingredients .ingredient").First().AttrOr("data-id", "")
	require.NotEmpty(t, id)
	doc = c.post("/fridge/ingredients/"+id+"/delete", nil)
	assert.Equal(t, []string{"Thịt bò"}, texts(doc.Find("#ingredients .name")))
}

func TestFindRecipesWithEmptyFridgeStaysOnFridge(t *testing.T) {
	suggester := &stubSuggester{}
	c := newTestServer(t, suggester)

	doc := c.post("/fridge/find", nil)
	assert.Equal(t, "FRIDGE", doc.Find("#view").AttrOr("data-view", ""))
	assert.Zero(t, suggester.callCount())
}

func TestRecipeFlow(t *testing.T) {
	suggester := &stubSuggester{recipes: sampleRecipes()}
	c := newTestServer(t, suggester)

	c.post("/fridge/ingredients", url.Values{"name": {"Trứng"}})
	doc := c.post("/fridge/find", nil)
	assert.Equal(t, "RECIPES", doc.Find("#view").AttrOr("data-view", ""))

	require.Eventually(t, func() bool {
		return c.get("/recipes").Find("article.recipe").Length() == 2
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, suggester.callCount())

	doc = c.get("/recipes")
	assert.Zero(t, doc.Find("#loading").Length())
	assert.Zero(t, doc.Find(".details").Length(), "recipes start collapsed")
	assert.Equal(t, 1, doc.Find("article.recipe .missing").Length())

	doc = c.post("/recipes/0/toggle", nil)
	assert.Equal(t, "trung-1-0", doc.Find("article.expanded").AttrOr("data-id", ""))
	assert.Equal(t, []string{"Đập trứng", "Chiên"}, texts(doc.Find(".details ol.steps li")))

	doc = c.post("/recipes/1/toggle", nil)
	assert.Equal(t, 1, doc.Find("article.expanded").Length())
	assert.Equal(t, "canh-1-1", doc.Find("article.expanded").AttrOr("data-id", ""))

	c.post("/recipes/0/shopping", nil)
	doc = c.post("/recipes/0/shopping", nil)
	assert.Equal(t, "4", strings.TrimSpace(doc.Find("#nav .badge").Text()))

	doc = c.get("/shopping")
	assert.Equal(t, []string{"Hành lá", "Nước mắm", "Hành lá", "Nước mắm"}, texts(doc.Find("#shopping .name")))
	assert.Equal(t, 1, suggester.callCount())
}

func TestRecipeErrorShowsMessage(t *testing.T) {
	suggester := &stubSuggester{err: assert.AnError}
	c := newTestServer(t, suggester)

	c.post("/fridge/ingredients", url.Values{"name": {"Trứng"}})
	c.post("/fridge/find", nil)

	var doc *goquery.Document
	require.Eventually(t, func() bool {
		doc = c.get("/recipes")
		return doc.Find("#error").Length() == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.NotEmpty(t, strings.TrimSpace(doc.Find("#error .message").Text()))

	doc = c.post("/recipes/back", nil)
	assert.Equal(t, "FRIDGE", doc.Find("#view").AttrOr("data-view", ""))
	assert.Equal(t, []string{"Trứng"}, texts(doc.Find("#ingredients .name")))
}

func TestUnknownRecipeIsNotFound(t *testing.T) {
	suggester := &stubSuggester{recipes: sampleRecipes()}
	c := newTestServer(t, suggester)
	c.post("/fridge/ingredients", url.Values{"name": {"Trứng"}})
	c.post("/fridge/find", nil)
	require.Eventually(t, func() bool {
		return c.get("/recipes").Find("article.recipe").Length() == 2
	}, 2*time.Second, 20*time.Millisecond)

	for _, path := range []string{"/recipes/2/toggle", "/recipes/-1/toggle", "/recipes/missing/toggle"} {
		resp, err := c.client.PostForm(c.base+path, nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestRecipeActionsWithReservedCharactersInIDs(t *testing.T) {
	for _, id := range []string{"ga/xao-1-0", "pho#1-1-0", "bun?x-1-0", "canh%20chua-1-0"} {
		t.Run(id, func(t *testing.T) {
			suggester := &stubSuggester{recipes: []recipe.Recipe{{
				ID: id, Name: "Món", Description: "d", CookingTime: "5 phút", Difficulty: "Dễ", Calories: "100",
				MissingIngredients: []string{"Tỏi"}, Steps: []string{"Nấu"},
			}}}
			c := newTestServer(t, suggester)
			c.post("/fridge/ingredients", url.Values{"name": {"Trứng"}})
			c.post("/fridge/find", nil)

			var doc *goquery.Document
			require.Eventually(t, func() bool {
				doc = c.get("/recipes")
				return doc.Find("article.recipe").Length() == 1
			}, 2*time.Second, 20*time.Millisecond)

			toggle, ok := doc.Find(`form[action$="/toggle"]`).Attr("action")
			require.True(t, ok)
			doc = c.post(toggle, nil)
			assert.Equal(t, 1, doc.Find("article.expanded").Length())
			assert.Equal(t, id, doc.Find("article.expanded").AttrOr("data-id", ""))

			add, ok := doc.Find(`.missing form`).Attr("action")
			require.True(t, ok)
			doc = c.post(add, nil)
			assert.Equal(t, "1", strings.TrimSpace(doc.Find("#nav .badge").Text()))
		})
	}
}

func TestShoppingClearNeedsConfirmation(t *testing.T) {
	c := newTestServer(t, &stubSuggester{})

	c.post("/shopping/items", url.Values{"name": {"Sữa"}})
	doc := c.post("/shopping/items", url.Values{"name": {"Bánh mì"}})
	require.Equal(t, 2, doc.Find("#shopping li.item").Length())

	id := doc.Find("#shopping li.item").First().AttrOr("data-id", "")
	doc = c.post("/shopping/items/"+id+"/toggle", nil)
	assert.Equal(t, 1, doc.Find("#shopping li.checked").Length())
	assert.Contains(t, doc.Find("#summary").Text(), "1 đã xong")

	doc = c.get("/shopping/clear")
	assert.Equal(t, "Bạn chắc chắn muốn xoá hết danh sách?", strings.TrimSpace(doc.Find("#confirm-clear p").Text()))

	doc = c.post("/shopping/clear", url.Values{"confirm": {"no"}})
	assert.Equal(t, 2, doc.Find("#shopping li.item").Length())

	doc = c.post("/shopping/clear", url.Values{"confirm": {"yes"}})
	assert.Zero(t, doc.Find("#shopping li.item").Length())
	assert.Equal(t, 1, doc.Find("#empty").Length())
}

func TestInvalidCookieStartsNewSession(t *testing.T) {
	c := newTestServer(t, &stubSuggester{})
	c.post("/fridge/ingredients", url.Values{"name": {"Trứng"}})

	u, _ := url.Parse(c.base)
	c.client.Jar.SetCookies(u, []*http.Cookie{{Name: cookieName, Value: "garbage", Path: "/"}})

	doc := c.get("/fridge")
	assert.Zero(t, doc.Find("#ingredients").Length())
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, &stubSuggester{})
	resp, err := c.client.Get(c.base + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := tokenIssuer{secret: []byte("s"), ttl: time.Minute}
	raw, err := tokens.issue("abc", time.Now())
	require.NoError(t, err)

	id, err := tokens.parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	other := tokenIssuer{secret: []byte("other"), ttl: time.Minute}
	_, err = other.parse(raw)
	assert.Error(t, err)

	expired, err := tokens.issue("abc", time.Now().Add(-2*time.Minute))
	require.NoError(t, err)
	_, err = tokens.parse(expired)
	assert.Error(t, err)
}

func TestRouterRecoversFromHandlerPanic(t *testing.T) {
	router := NewRouter()
	router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
