package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login and registration attempts allowed per client IP and window.
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// Router builds the chi route tree.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogFields)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.requestMetrics)
	r.Use(s.authenticate)

	limitAuth := httprate.Limit(authRateLimit, authRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeDetail(w, http.StatusTooManyRequests, "too many requests")
		}),
	)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/r/{code}", s.resolveShortLink)

	r.Route("/api", func(r chi.Router) {
		r.With(limitAuth).Post("/auth/token/login", s.login)

		r.Route("/users", func(r chi.Router) {
			r.With(limitAuth).Post("/", s.register)
			r.Get("/", s.listUsers)
			r.Get("/{id}", s.getUser)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/me", s.me)
				r.Patch("/me", s.updateMe)
				r.Post("/me/avatar", s.uploadAvatar)
				r.Delete("/me/avatar", s.deleteAvatar)
				r.Post("/set_password", s.setPassword)
				r.Get("/subscriptions", s.subscriptions)
				r.Post("/{id}/subscribe", s.subscribe)
				r.Delete("/{id}/subscribe", s.unsubscribe)
			})
		})

		r.Get("/tags", s.listTags)
		r.Get("/tags/{id}", s.getTag)
		r.Get("/ingredients", s.listIngredients)
		r.Get("/ingredients/{id}", s.getIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.listRecipes)
			r.Get("/{id}", s.getRecipe)
			r.Get("/{id}/get-link", s.getLink)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", s.createRecipe)
				r.Patch("/{id}", s.updateRecipe)
				r.Delete("/{id}", s.deleteRecipe)
				r.Post("/images", s.uploadImage)
				r.Get("/download_shopping_cart", s.downloadShoppingCart)
				r.Post("/{id}/favorite", s.addFavorite)
				r.Delete("/{id}/favorite", s.removeFavorite)
				r.Post("/{id}/shopping_cart", s.addToCart)
				r.Delete("/{id}/shopping_cart", s.removeFromCart)
			})
		})
	})

	return r
}
