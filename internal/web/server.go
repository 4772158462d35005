// Package web serves the browser UI.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"fridge-chef/internal/session"
	"fridge-chef/internal/shopping"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:embed templates/*.html
var templatesFS embed.FS

const cookieName = "fridge_session"

// loadingRefreshSeconds is how often the loading page reloads itself.
const loadingRefreshSeconds = 2

var viewPaths = map[session.View]string{
	session.ViewFridge:   "/fridge",
	session.ViewRecipes:  "/recipes",
	session.ViewShopping: "/shopping",
}

// Server renders the three views for browser sessions.
type Server struct {
	registry   *session.Registry
	tokens     tokenIssuer
	llmTimeout time.Duration
	pages      map[string]*template.Template
}

// NewServer creates the browser UI. secret signs session cookies; ttl bounds
// their lifetime; llmTimeout bounds each background recipe request.
func NewServer(registry *session.Registry, secret []byte, ttl, llmTimeout time.Duration) (*Server, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"fridge", "recipes", "shopping", "confirm"} {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return &Server{
		registry:   registry,
		tokens:     tokenIssuer{secret: secret, ttl: ttl},
		llmTimeout: llmTimeout,
		pages:      pages,
	}, nil
}

// NewRouter returns the router shared by the UI and the bot webhook, with
// request logging and panic recovery.
func NewRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	return router
}

// RegisterHandlers registers the UI routes on r. Recipes are addressed by
// their position in the list since their ids come from the model.
func (s *Server) RegisterHandlers(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/fridge", s.handleFridge)
	r.Post("/fridge/ingredients", s.handleAddIngredient)
	r.Post("/fridge/suggestions", s.handleAddSuggestion)
	r.Post("/fridge/ingredients/{id}/delete", s.handleRemoveIngredient)
	r.Post("/fridge/find", s.handleFindRecipes)

	r.Get("/recipes", s.handleRecipes)
	r.Post("/recipes/back", s.handleBackToFridge)
	r.Post("/recipes/{index}/toggle", s.handleToggleRecipe)
	r.Post("/recipes/{index}/shopping", s.handleAddMissing)

	r.Get("/shopping", s.handleShopping)
	r.Post("/shopping/items", s.handleAddShoppingItem)
	r.Post("/shopping/items/{id}/toggle", s.handleToggleShoppingItem)
	r.Post("/shopping/items/{id}/delete", s.handleRemoveShoppingItem)
	r.Get("/shopping/clear", s.handleConfirmClear)
	r.Post("/shopping/clear", s.handleClear)
}

// session resolves the caller's session from the cookie, starting a new one
// when the cookie is missing, invalid or points to an evicted session. The
// cookie is re-issued on every request so its expiry follows activity.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var sess *session.Session
	if c, err := r.Cookie(cookieName); err == nil {
		if id, err := s.tokens.parse(c.Value); err == nil {
			sess, _ = s.registry.Get(id)
		}
	}
	if sess == nil {
		sess = s.registry.GetOrCreate(uuid.NewString())
	}

	token, err := s.tokens.issue(sess.ID, time.Now())
	if err != nil {
		log.Printf("Failed to sign session token for %s: %v", sess.ID, err)
		return sess
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.tokens.ttl.Seconds()),
	})
	return sess
}

type pageData struct {
	Title    string
	Refresh  int
	Prompt   string
	Snapshot session.Snapshot
}

func (s *Server) render(w http.ResponseWriter, page string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages[page].ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("Failed to render %s page: %v", page, err)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	redirect(w, r, viewPaths[sess.CurrentView()])
}

func (s *Server) handleFridge(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Navigate(session.ViewFridge)
	s.render(w, "fridge", pageData{Title: "Tủ Lạnh", Snapshot: sess.Snapshot()})
}

func (s *Server) handleAddIngredient(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.AddIngredient(r.FormValue("name"))
	redirect(w, r, "/fridge")
}

func (s *Server) handleAddSuggestion(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.AddSuggestion(r.FormValue("name"))
	redirect(w, r, "/fridge")
}

func (s *Server) handleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.RemoveIngredient(chi.URLParam(r, "id"))
	redirect(w, r, "/fridge")
}

func (s *Server) handleFindRecipes(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.FindRecipes(); err != nil {
		redirect(w, r, "/fridge")
		return
	}
	redirect(w, r, "/recipes")
}

func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Navigate(session.ViewRecipes)

	snap := sess.Snapshot()
	data := pageData{Title: "Công Thức", Snapshot: snap}
	if snap.Recipes != nil && snap.Recipes.Loading() {
		// LoadRecipes is a no-op once the request has started, so every
		// refresh of the loading page may call it.
		go s.loadRecipes(sess)
		data.Refresh = loadingRefreshSeconds
	}
	s.render(w, "recipes", data)
}

func (s *Server) loadRecipes(sess *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), s.llmTimeout)
	defer cancel()
	sess.LoadRecipes(ctx)
}

// recipeID resolves the {index} path parameter against the mounted recipe view.
func recipeID(r *http.Request, sess *session.Session) (int, string, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, "", session.ErrRecipeNotFound
	}
	if sess.CurrentView() != session.ViewRecipes {
		return 0, "", session.ErrNoRecipeView
	}
	id, ok := sess.RecipeIDAt(index)
	if !ok {
		return 0, "", session.ErrRecipeNotFound
	}
	return index, id, nil
}

func recipeAnchor(index int) string {
	return "/recipes#recipe-" + strconv.Itoa(index)
}

func (s *Server) handleToggleRecipe(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	index, id, err := recipeID(r, sess)
	if err == nil {
		err = sess.ToggleRecipe(id)
	}
	if err != nil {
		s.recipeActionFailed(w, r, sess, err)
		return
	}
	redirect(w, r, recipeAnchor(index))
}

func (s *Server) handleAddMissing(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	index, id, err := recipeID(r, sess)
	var added []shopping.Item
	if err == nil {
		added, err = sess.AddMissingToShopping(id)
	}
	if err != nil {
		s.recipeActionFailed(w, r, sess, err)
		return
	}
	log.Printf("Session %s: added %d missing ingredients to the shopping list", sess.ID, len(added))
	redirect(w, r, recipeAnchor(index))
}

func (s *Server) recipeActionFailed(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	if errors.Is(err, session.ErrNoRecipeView) {
		redirect(w, r, viewPaths[sess.CurrentView()])
		return
	}
	http.Error(w, "Không tìm thấy công thức.", http.StatusNotFound)
}

func (s *Server) handleBackToFridge(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Navigate(session.ViewFridge)
	redirect(w, r, "/fridge")
}

func (s *Server) handleShopping(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Navigate(session.ViewShopping)
	s.render(w, "shopping", pageData{Title: "Đi Chợ", Snapshot: sess.Snapshot()})
}

func (s *Server) handleAddShoppingItem(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.AddShoppingItem(r.FormValue("name"))
	redirect(w, r, "/shopping")
}

func (s *Server) handleToggleShoppingItem(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.ToggleShoppingItem(chi.URLParam(r, "id"))
	redirect(w, r, "/shopping")
}

func (s *Server) handleRemoveShoppingItem(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.RemoveShoppingItem(chi.URLParam(r, "id"))
	redirect(w, r, "/shopping")
}

func (s *Server) handleConfirmClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	snap := sess.Snapshot()
	if snap.ShoppingTotal == 0 {
		redirect(w, r, "/shopping")
		return
	}
	s.render(w, "confirm", pageData{Title: "Đi Chợ", Prompt: shopping.ClearPrompt, Snapshot: snap})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	confirmed := shopping.ConfirmFunc(func(string) bool {
		return r.FormValue("confirm") == "yes"
	})
	if sess.ClearShopping(confirmed) {
		log.Printf("Session %s: shopping list cleared", sess.ID)
	}
	redirect(w, r, "/shopping")
}
