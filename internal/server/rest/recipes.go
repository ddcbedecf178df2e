package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type ingredientAmountRequest struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int   `json:"amount"`
}

// recipeRequest serves both POST and PATCH. Absent fields stay nil so a
// partial update can tell them apart from empty ones.
type recipeRequest struct {
	Ingredients []ingredientAmountRequest `json:"ingredients" validate:"omitempty,dive"`
	Tags        []int64                   `json:"tags" validate:"omitempty,dive,gt=0"`
	Image       *string                   `json:"image" validate:"omitempty,max=512"`
	Name        *string                   `json:"name" validate:"omitempty,max=256"`
	Text        *string                   `json:"text"`
	CookingTime *int                      `json:"cooking_time"`
}

func (req *recipeRequest) amounts() []models.IngredientAmount {
	if req.Ingredients == nil {
		return nil
	}
	out := make([]models.IngredientAmount, 0, len(req.Ingredients))
	for _, it := range req.Ingredients {
		out = append(out, models.IngredientAmount{IngredientID: it.ID, Amount: it.Amount})
	}
	return out
}

func (req *recipeRequest) input() (models.RecipeInput, error) {
	switch {
	case req.Name == nil, req.Text == nil, req.CookingTime == nil, req.Image == nil:
		return models.RecipeInput{}, missingField("name, text, cooking_time and image are required")
	case req.Tags == nil, req.Ingredients == nil:
		return models.RecipeInput{}, missingField("tags and ingredients are required")
	}
	return models.RecipeInput{
		Name:        *req.Name,
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
		ImageKey:    *req.Image,
		Tags:        req.Tags,
		Ingredients: req.amounts(),
	}, nil
}

func missingField(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

type imageUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type shortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

func (s *HTTPServer) recipeFilter(r *http.Request, p pageRequest) (models.RecipeFilter, bool, error) {
	q := r.URL.Query()
	viewer := userID(r.Context())

	filter := models.RecipeFilter{
		TagSlugs: q["tags"],
		Search:   q.Get("search"),
		Page:     p.window(),
	}
	if raw := q.Get("author"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, false, missingField("author must be a user id")
		}
		filter.AuthorID = id
	}

	// anonymous viewers have no favorites and no cart
	if queryFlag(q, "is_favorited") {
		if viewer == 0 {
			return filter, true, nil
		}
		filter.FavoritedBy = viewer
	}
	if queryFlag(q, "is_in_shopping_cart") {
		if viewer == 0 {
			return filter, true, nil
		}
		filter.InCartOf = viewer
	}
	return filter, false, nil
}

func (s *HTTPServer) listRecipes(w http.ResponseWriter, r *http.Request) {
	p, err := s.pageFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter, empty, err := s.recipeFilter(r, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if empty {
		writeJSON(w, http.StatusOK, s.paginate(r, p, 0, []recipeResponse{}))
		return
	}

	list, total, err := s.svc.Recipes.List(r.Context(), userID(r.Context()), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := s.presentRecipes(r.Context(), list)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.paginate(r, p, total, results))
}

func (s *HTTPServer) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.svc.Recipes.Get(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecipe(w, r, http.StatusOK, d)
}

func (s *HTTPServer) writeRecipe(w http.ResponseWriter, r *http.Request, status int, d *models.RecipeDetails) {
	out, err := s.presentRecipe(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, out)
}

func (s *HTTPServer) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.svc.Recipes.Create(r.Context(), userID(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecipe(w, r, http.StatusCreated, d)
}

func (s *HTTPServer) updateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.svc.Recipes.Update(r.Context(), userID(r.Context()), id, models.RecipeUpdate{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageKey:    req.Image,
		Tags:        req.Tags,
		Ingredients: req.amounts(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecipe(w, r, http.StatusOK, d)
}

func (s *HTTPServer) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Recipes.Delete(r.Context(), userID(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) uploadImage(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.svc.Images.PresignUpload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, imageUploadResponse{Key: key, UploadURL: url})
}

func (s *HTTPServer) downloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Shopping.Aggregate(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	w.WriteHeader(http.StatusOK)
	if err := services.WriteShoppingList(w, items); err != nil {
		s.logger.Warn(r.Context(), "shopping list write failed", "error", err)
	}
}

func (s *HTTPServer) getLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	link, err := s.svc.Links.ShortLink(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shortLinkResponse{ShortLink: link})
}

// resolveShortLink always redirects; unknown codes land on the fallback page.
func (s *HTTPServer) resolveShortLink(w http.ResponseWriter, r *http.Request) {
	target, err := s.svc.Links.Resolve(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
