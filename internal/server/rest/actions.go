package rest

import (
	"net/http"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

func (s *HTTPServer) recipesLimit(r *http.Request) (int, error) {
	n, err := queryInt(r.URL.Query(), "recipes_limit", 0)
	if err != nil {
		return 0, err
	}
	return min(n, s.maxPageSize), nil
}

func (s *HTTPServer) subscriptions(w http.ResponseWriter, r *http.Request) {
	p, err := s.pageFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := s.recipesLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cards, total, err := s.svc.Actions.Subscriptions(r.Context(), userID(r.Context()), p.window(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results := make([]authorCardResponse, 0, len(cards))
	for _, c := range cards {
		out, err := s.presentAuthorCard(r.Context(), c)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		results = append(results, out)
	}
	writeJSON(w, http.StatusOK, s.paginate(r, p, total, results))
}

func (s *HTTPServer) subscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := s.recipesLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	card, err := s.svc.Actions.Subscribe(r.Context(), userID(r.Context()), authorID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.presentAuthorCard(r.Context(), card)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *HTTPServer) unsubscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.Actions.Unsubscribe(r.Context(), userID(r.Context()), authorID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) addRelation(kind models.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipeID, err := pathID(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		summary, err := s.svc.Actions.AddRecipeRelation(r.Context(), kind, userID(r.Context()), recipeID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		out, err := s.presentSummary(r.Context(), summary)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func (s *HTTPServer) removeRelation(kind models.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipeID, err := pathID(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.svc.Actions.RemoveRecipeRelation(r.Context(), kind, userID(r.Context()), recipeID); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *HTTPServer) addFavorite(w http.ResponseWriter, r *http.Request) {
	s.addRelation(models.RelationFavorite)(w, r)
}

func (s *HTTPServer) removeFavorite(w http.ResponseWriter, r *http.Request) {
	s.removeRelation(models.RelationFavorite)(w, r)
}

func (s *HTTPServer) addToCart(w http.ResponseWriter, r *http.Request) {
	s.addRelation(models.RelationShoppingCart)(w, r)
}

func (s *HTTPServer) removeFromCart(w http.ResponseWriter, r *http.Request) {
	s.removeRelation(models.RelationShoppingCart)(w, r)
}
