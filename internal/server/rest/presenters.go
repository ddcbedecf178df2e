package rest

import (
	"context"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

type userResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar"`
}

func (s *HTTPServer) presentUser(ctx context.Context, u *models.User, subscribed bool) (userResponse, error) {
	avatar, err := s.svc.Images.URL(ctx, u.AvatarKey)
	if err != nil {
		return userResponse{}, err
	}
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.UserName,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       avatar,
	}, nil
}

type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func presentTag(t *models.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

type ingredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type recipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []tagResponse              `json:"tags"`
	Author           userResponse               `json:"author"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

type recipeSummaryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type authorCardResponse struct {
	userResponse
	Recipes      []recipeSummaryResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

func (s *HTTPServer) presentRecipe(ctx context.Context, d *models.RecipeDetails) (recipeResponse, error) {
	image, err := s.svc.Images.URL(ctx, d.ImageKey)
	if err != nil {
		return recipeResponse{}, err
	}

	out := recipeResponse{
		ID:               d.ID,
		Tags:             make([]tagResponse, 0, len(d.Tags)),
		Ingredients:      make([]recipeIngredientResponse, 0, len(d.Ingredients)),
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             d.Name,
		Image:            image,
		Text:             d.Text,
		CookingTime:      d.CookingTime,
	}
	if d.Author != nil {
		if out.Author, err = s.presentUser(ctx, d.Author, d.AuthorIsSubscribed); err != nil {
			return recipeResponse{}, err
		}
	}
	for i := range d.Tags {
		out.Tags = append(out.Tags, presentTag(&d.Tags[i]))
	}
	for _, ing := range d.Ingredients {
		out.Ingredients = append(out.Ingredients, recipeIngredientResponse{
			ID:              ing.IngredientID,
			Name:            ing.Name,
			MeasurementUnit: ing.MeasurementUnit,
			Amount:          ing.Amount,
		})
	}
	return out, nil
}

func (s *HTTPServer) presentRecipes(ctx context.Context, list []*models.RecipeDetails) ([]recipeResponse, error) {
	out := make([]recipeResponse, 0, len(list))
	for _, d := range list {
		rr, err := s.presentRecipe(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, nil
}

func (s *HTTPServer) presentSummary(ctx context.Context, r *models.RecipeSummary) (recipeSummaryResponse, error) {
	image, err := s.svc.Images.URL(ctx, r.ImageKey)
	if err != nil {
		return recipeSummaryResponse{}, err
	}
	return recipeSummaryResponse{ID: r.ID, Name: r.Name, Image: image, CookingTime: r.CookingTime}, nil
}

func (s *HTTPServer) presentAuthorCard(ctx context.Context, c *models.AuthorCard) (authorCardResponse, error) {
	user, err := s.presentUser(ctx, c.User, c.IsSubscribed)
	if err != nil {
		return authorCardResponse{}, err
	}
	out := authorCardResponse{
		userResponse: user,
		Recipes:      make([]recipeSummaryResponse, 0, len(c.Recipes)),
		RecipesCount: c.RecipesCount,
	}
	for _, r := range c.Recipes {
		rs, err := s.presentSummary(ctx, r)
		if err != nil {
			return authorCardResponse{}, err
		}
		out.Recipes = append(out.Recipes, rs)
	}
	return out, nil
}
