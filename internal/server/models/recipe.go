package models

import "time"

type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Text        string
	CookingTime int
	ImageKey    string
	PubDate     time.Time
}

// IngredientAmount is one (ingredient, amount) pair of a recipe's composition
// as submitted by a client.
type IngredientAmount struct {
	IngredientID int64
	Amount       int
}

// RecipeIngredient is a stored composition row joined with its ingredient.
type RecipeIngredient struct {
	RecipeID        int64
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int
}

// RecipeTag is a tag attached to a recipe; Position keeps the submitted order.
type RecipeTag struct {
	RecipeID int64
	Position int
	Tag      Tag
}

// RecipeDetails is a recipe with its composition and viewer-specific flags.
type RecipeDetails struct {
	Recipe
	Author             *User
	AuthorIsSubscribed bool
	Tags               []Tag
	Ingredients        []RecipeIngredient
	IsFavorited        bool
	IsInShoppingCart   bool
}

// RecipeSummary is the short form returned by favorite/cart toggles and
// subscription listings.
type RecipeSummary struct {
	ID          int64
	Name        string
	ImageKey    string
	CookingTime int
}

func (r *Recipe) Summary() *RecipeSummary {
	return &RecipeSummary{ID: r.ID, Name: r.Name, ImageKey: r.ImageKey, CookingTime: r.CookingTime}
}

// Page selects a window of a listing. Limit 0 means no limit.
type Page struct {
	Limit  int
	Offset int
}

// RecipeFilter narrows a recipe listing. Zero values disable a criterion.
// TagSlugs match any of the given slugs. Search matches name or text.
type RecipeFilter struct {
	AuthorID    int64
	TagSlugs    []string
	FavoritedBy int64
	InCartOf    int64
	Search      string
	Page        Page
}

// RecipeInput is a full recipe as submitted on creation.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	ImageKey    string
	Tags        []int64
	Ingredients []IngredientAmount
}

// RecipeUpdate is a partial recipe change. Nil pointers and nil slices mean
// the field was not supplied.
type RecipeUpdate struct {
	Name        *string
	Text        *string
	CookingTime *int
	ImageKey    *string
	Tags        []int64
	Ingredients []IngredientAmount
}
