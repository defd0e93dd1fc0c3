package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alen-Aazim/Yesgee/internal/catalog"
	"github.com/Alen-Aazim/Yesgee/pkg/kit"
)

const (
	sessionTTL       = 12 * time.Hour
	loginPerMinute   = 5
	productsPath     = "/admin/products"
	loginPath        = "/admin/login"
	maxFormBodyBytes = 64 << 10
)

// Server is the server-rendered admin console. It owns no state of its
// own; every request is a full round trip against the catalog store.
type Server struct {
	Store    catalog.Store
	Log      *zap.Logger
	Sessions *SessionMaker

	// PasswordHash is the bcrypt hash admins log in against. Empty
	// leaves the console unprotected, which suits local development.
	PasswordHash string
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	loginLimiter := kit.NewIPRateLimiter(loginPerMinute, loginPerMinute)

	r.Get("/login", s.loginForm)
	r.With(loginLimiter.Middleware).Post("/login", s.login)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireSession)

		pr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, productsPath, http.StatusSeeOther)
		})
		pr.Get("/products", s.listing)
		pr.Get("/products/edit/{id}", s.editForm)
		pr.Post("/products/save", s.save)
		pr.Post("/products/delete/{id}", s.delete)
	})

	return r
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.PasswordHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		c, err := r.Cookie(SessionCookie)
		if err != nil || s.Sessions.Verify(c.Value) != nil {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginData struct {
	Error string
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	if s.PasswordHash == "" {
		http.Redirect(w, r, productsPath, http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login.html", loginData{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login.html", loginData{Error: "Bad request"})
		return
	}

	password := r.PostFormValue("password")
	if bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)) != nil {
		s.render(w, http.StatusUnauthorized, "login.html", loginData{Error: "Wrong password"})
		return
	}

	token, err := s.Sessions.New(sessionTTL)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("issue session failed", zap.Error(err))
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/admin",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, productsPath, http.StatusSeeOther)
}

type listingData struct {
	Products []catalog.Product
}

type editData struct {
	Product catalog.Product
}

func (s *Server) listing(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.LoadAll(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load products failed", zap.Error(err))
		}
		http.Error(w, "Error loading products", http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, "products.html", listingData{Products: products})
}

func (s *Server) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	products, err := s.Store.LoadAll(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load products failed", zap.Error(err))
		}
		http.Error(w, "Error loading product", http.StatusInternalServerError)
		return
	}

	for _, p := range products {
		if p.ID == id {
			s.render(w, http.StatusOK, "edit.html", editData{Product: p})
			return
		}
	}

	// Editing a product that vanished is not an error.
	http.Redirect(w, r, productsPath, http.StatusSeeOther)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	p := catalog.Product{
		ID:          strings.TrimSpace(r.PostFormValue("id")),
		Title:       r.PostFormValue("title"),
		Category:    r.PostFormValue("category"),
		Price:       catalog.ParsePrice(r.PostFormValue("price")),
		Image:       r.PostFormValue("image"),
		Description: r.PostFormValue("description"),
	}.Normalize()

	if p.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	if _, err := s.Store.Upsert(r.Context(), p); err != nil {
		if s.Log != nil {
			s.Log.Error("save product failed", zap.Error(err), zap.String("id", p.ID))
		}
		http.Error(w, "Error saving product", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, productsPath, http.StatusSeeOther)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Store.Delete(r.Context(), id); err != nil {
		if s.Log != nil {
			s.Log.Error("delete product failed", zap.Error(err), zap.String("id", id))
		}
		http.Error(w, "Error deleting product", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, productsPath, http.StatusSeeOther)
}

// ParsePasswordHash validates an operator-supplied bcrypt hash at
// startup so a typo fails fast instead of locking everyone out.
func ParsePasswordHash(hash string) error {
	if hash == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return errors.New("ADMIN_PASSWORD_HASH is not a valid bcrypt hash")
	}
	return nil
}
