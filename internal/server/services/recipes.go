package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
)

// RecipeService creates, replaces, reads and deletes recipes with their
// ordered tags and ingredient composition. All validation happens before the
// first write; composition changes are applied in a single transaction.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	relations   *RelationStore
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager) *RecipeService {
	return &RecipeService{db: db, repomanager: m, relations: NewRelationStore(db, m)}
}

// maxStoredInt is the upper bound of the INTEGER columns holding cooking
// time and ingredient amounts.
const maxStoredInt = math.MaxInt32

func validateCookingTime(minutes int) error {
	if minutes < 1 || minutes > maxStoredInt {
		return common.ErrInvalidCookingTime
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", common.ErrorValidation)
	}
	return nil
}

// validateComposition checks that tags and ingredients are non-empty, free of
// duplicates and that every amount fits a positive INTEGER.
func validateComposition(tagIDs []int64, items []models.IngredientAmount) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", common.ErrInvalidComposition)
	}
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.IngredientID]; dup {
			return fmt.Errorf("%w: ingredient %d is listed twice", common.ErrInvalidComposition, it.IngredientID)
		}
		seen[it.IngredientID] = struct{}{}
		if it.Amount < 1 || it.Amount > maxStoredInt {
			return fmt.Errorf("%w: amount of ingredient %d must be between 1 and %d", common.ErrInvalidComposition, it.IngredientID, maxStoredInt)
		}
	}

	if len(tagIDs) == 0 {
		return fmt.Errorf("%w: at least one tag is required", common.ErrInvalidComposition)
	}
	seenTags := make(map[int64]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seenTags[id]; dup {
			return fmt.Errorf("%w: tag %d is listed twice", common.ErrInvalidComposition, id)
		}
		seenTags[id] = struct{}{}
	}

	return nil
}

// checkReferences fails with ErrorNotFound if any tag or ingredient is unknown.
func (s *RecipeService) checkReferences(ctx context.Context, db dbx.DBTX, tagIDs []int64, items []models.IngredientAmount) error {
	found, err := s.repomanager.Tags(db).FindByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	if len(found) != len(tagIDs) {
		return fmt.Errorf("%w: unknown tag", common.ErrorNotFound)
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.IngredientID
	}
	ings, err := s.repomanager.Ingredients(db).FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(ings) != len(ids) {
		return fmt.Errorf("%w: unknown ingredient", common.ErrorNotFound)
	}

	return nil
}

func (s *RecipeService) Create(ctx context.Context, authorID int64, in models.RecipeInput) (*models.RecipeDetails, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateCookingTime(in.CookingTime); err != nil {
		return nil, err
	}
	if err := validateComposition(in.Tags, in.Ingredients); err != nil {
		return nil, err
	}

	var recipeID int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkReferences(ctx, tx, in.Tags, in.Ingredients); err != nil {
			return err
		}

		repo := s.repomanager.Recipes(tx)
		recipe, err := repo.Create(ctx, &models.Recipe{
			AuthorID:    authorID,
			Name:        in.Name,
			Text:        in.Text,
			CookingTime: in.CookingTime,
			ImageKey:    in.ImageKey,
		})
		if err != nil {
			return err
		}
		recipeID = recipe.ID

		if err := repo.ReplaceTags(ctx, recipe.ID, in.Tags); err != nil {
			return err
		}
		return repo.ReplaceIngredients(ctx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, authorID, recipeID)
}

// Update applies a partial change. Tags and ingredients must be supplied
// together; when they are, the whole composition is replaced.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID int64, upd models.RecipeUpdate) (*models.RecipeDetails, error) {
	recipe, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	replaceComposition := upd.Tags != nil || upd.Ingredients != nil
	if replaceComposition && (upd.Tags == nil || upd.Ingredients == nil) {
		return nil, fmt.Errorf("%w: tags and ingredients must be supplied together", common.ErrInvalidComposition)
	}
	if upd.Name != nil {
		if err := validateName(*upd.Name); err != nil {
			return nil, err
		}
		recipe.Name = *upd.Name
	}
	if upd.Text != nil {
		recipe.Text = *upd.Text
	}
	if upd.CookingTime != nil {
		if err := validateCookingTime(*upd.CookingTime); err != nil {
			return nil, err
		}
		recipe.CookingTime = *upd.CookingTime
	}
	if upd.ImageKey != nil {
		recipe.ImageKey = *upd.ImageKey
	}
	if replaceComposition {
		if err := validateComposition(upd.Tags, upd.Ingredients); err != nil {
			return nil, err
		}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if replaceComposition {
			if err := s.checkReferences(ctx, tx, upd.Tags, upd.Ingredients); err != nil {
				return err
			}
		}

		repo := s.repomanager.Recipes(tx)
		if err := repo.Update(ctx, recipe); err != nil {
			return err
		}
		if !replaceComposition {
			return nil
		}
		if err := repo.ReplaceTags(ctx, recipe.ID, upd.Tags); err != nil {
			return err
		}
		return repo.ReplaceIngredients(ctx, recipe.ID, upd.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, recipeID)
}

func (s *RecipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	if _, err := s.ownedRecipe(ctx, userID, recipeID); err != nil {
		return err
	}
	return s.repomanager.Recipes(s.db).Delete(ctx, recipeID)
}

func (s *RecipeService) ownedRecipe(ctx context.Context, userID, recipeID int64) (*models.Recipe, error) {
	recipe, err := s.repomanager.Recipes(s.db).GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, common.ErrorForbidden
	}
	return recipe, nil
}

// Get returns a recipe as seen by viewerID (0 for anonymous).
func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID int64) (*models.RecipeDetails, error) {
	var details *models.RecipeDetails

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnlySnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		recipe, err := s.repomanager.Recipes(tx).GetByID(ctx, recipeID)
		if err != nil {
			return err
		}
		list, err := s.describe(ctx, tx, viewerID, []*models.Recipe{recipe})
		if err != nil {
			return err
		}
		details = list[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

// List returns one page of recipes matching filter and the total match count.
func (s *RecipeService) List(ctx context.Context, viewerID int64, filter models.RecipeFilter) ([]*models.RecipeDetails, int64, error) {
	var result []*models.RecipeDetails
	var total int64

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnlySnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		list, err := repo.List(ctx, filter)
		if err != nil {
			return err
		}
		if total, err = repo.Count(ctx, filter); err != nil {
			return err
		}
		result, err = s.describe(ctx, tx, viewerID, list)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

// describe loads authors, tags, ingredients and viewer flags for recipes.
func (s *RecipeService) describe(ctx context.Context, tx dbx.DBTX, viewerID int64, list []*models.Recipe) ([]*models.RecipeDetails, error) {
	repo := s.repomanager.Recipes(tx)
	usersRepo := s.repomanager.Users(tx)
	store := s.relations.On(tx)

	ids := make([]int64, len(list))
	authorIDs := make([]int64, 0, len(list))
	authors := make(map[int64]*models.User, len(list))
	for i, r := range list {
		ids[i] = r.ID
		if _, ok := authors[r.AuthorID]; ok {
			continue
		}
		author, err := usersRepo.GetByID(ctx, r.AuthorID)
		if err != nil {
			return nil, err
		}
		authors[r.AuthorID] = author
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := store.Present(ctx, models.RelationFavorite, viewerID, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := store.Present(ctx, models.RelationShoppingCart, viewerID, ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := store.Present(ctx, models.RelationSubscription, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	rows, err := repo.IngredientsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	byRecipe := make(map[int64][]models.RecipeIngredient, len(list))
	for _, row := range rows {
		byRecipe[row.RecipeID] = append(byRecipe[row.RecipeID], row)
	}

	result := make([]*models.RecipeDetails, 0, len(list))
	for _, r := range list {
		tags, err := repo.TagsFor(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.RecipeDetails{
			Recipe:             *r,
			Author:             authors[r.AuthorID],
			AuthorIsSubscribed: subscribed[r.AuthorID],
			Tags:               tags,
			Ingredients:        byRecipe[r.ID],
			IsFavorited:        favorited[r.ID],
			IsInShoppingCart:   inCart[r.ID],
		})
	}

	return result, nil
}
