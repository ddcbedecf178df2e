package rest

import (
	"context"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

// UserService is the identity collaborator of the API.
type UserService interface {
	Register(ctx context.Context, user *models.User, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	SetPassword(ctx context.Context, userID int64, current, next string) error
	Get(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	Profile(ctx context.Context, viewerID, id int64) (*models.UserProfile, error)
	List(ctx context.Context, viewerID int64, prefix string, page models.Page) ([]*models.UserProfile, int64, error)
}

type RecipeService interface {
	Create(ctx context.Context, authorID int64, in models.RecipeInput) (*models.RecipeDetails, error)
	Update(ctx context.Context, userID, recipeID int64, upd models.RecipeUpdate) (*models.RecipeDetails, error)
	Delete(ctx context.Context, userID, recipeID int64) error
	Get(ctx context.Context, viewerID, recipeID int64) (*models.RecipeDetails, error)
	List(ctx context.Context, viewerID int64, filter models.RecipeFilter) ([]*models.RecipeDetails, int64, error)
}

// ActionService backs the favorite, shopping cart and subscription toggles.
type ActionService interface {
	AddRecipeRelation(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (*models.RecipeSummary, error)
	RemoveRecipeRelation(ctx context.Context, kind models.RelationKind, userID, recipeID int64) error
	Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*models.AuthorCard, error)
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	Subscriptions(ctx context.Context, userID int64, page models.Page, recipesLimit int) ([]*models.AuthorCard, int64, error)
}

type ShoppingListService interface {
	Aggregate(ctx context.Context, userID int64) ([]models.ShoppingItem, error)
}

type CatalogService interface {
	Tags(ctx context.Context) ([]*models.Tag, error)
	Tag(ctx context.Context, id int64) (*models.Tag, error)
	Ingredients(ctx context.Context, prefix string) ([]*models.Ingredient, error)
	Ingredient(ctx context.Context, id int64) (*models.Ingredient, error)
}

type ImageService interface {
	PresignUpload(ctx context.Context) (string, string, error)
	PresignAvatarUpload(ctx context.Context) (string, string, error)
	URL(ctx context.Context, key string) (string, error)
}

type LinkService interface {
	ShortLink(ctx context.Context, recipeID int64) (string, error)
	Resolve(ctx context.Context, code string) (string, error)
}

// Services groups the collaborators a Server dispatches to.
type Services struct {
	Users    UserService
	Recipes  RecipeService
	Actions  ActionService
	Shopping ShoppingListService
	Catalog  CatalogService
	Images   ImageService
	Links    LinkService
}
