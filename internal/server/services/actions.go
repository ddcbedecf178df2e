package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
)

// ActionService implements the user-facing toggles: favorites, shopping cart
// and subscriptions.
type ActionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	relations   *RelationStore
}

func NewActionService(db *sql.DB, m repomanager.RepositoryManager) *ActionService {
	return &ActionService{db: db, repomanager: m, relations: NewRelationStore(db, m)}
}

func recipeKind(kind models.RelationKind) error {
	if !kind.Valid() || kind.TargetsUser() {
		return fmt.Errorf("%w: %q does not target recipes", common.ErrorValidation, kind)
	}
	return nil
}

// AddRecipeRelation puts recipeID into the user's favorites or shopping cart
// and returns the recipe summary.
func (s *ActionService) AddRecipeRelation(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (*models.RecipeSummary, error) {
	if err := recipeKind(kind); err != nil {
		return nil, err
	}

	recipe, err := s.repomanager.Recipes(s.db).GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	created, err := s.relations.ToggleAdd(ctx, kind, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, common.ErrDuplicateRelation
	}

	return recipe.Summary(), nil
}

func (s *ActionService) RemoveRecipeRelation(ctx context.Context, kind models.RelationKind, userID, recipeID int64) error {
	if err := recipeKind(kind); err != nil {
		return err
	}

	if _, err := s.repomanager.Recipes(s.db).GetByID(ctx, recipeID); err != nil {
		return err
	}

	removed, err := s.relations.ToggleRemove(ctx, kind, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return common.ErrRelationNotFound
	}

	return nil
}

// Subscribe makes userID follow authorID. recipesLimit caps the recipe
// preview on the returned card; 0 means no cap.
func (s *ActionService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*models.AuthorCard, error) {
	if userID == authorID {
		return nil, common.ErrSelfReference
	}

	author, err := s.repomanager.Users(s.db).GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	created, err := s.relations.ToggleAdd(ctx, models.RelationSubscription, userID, authorID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, common.ErrDuplicateRelation
	}

	return s.authorCard(ctx, s.db, author, true, recipesLimit)
}

func (s *ActionService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, authorID); err != nil {
		return err
	}

	removed, err := s.relations.ToggleRemove(ctx, models.RelationSubscription, userID, authorID)
	if err != nil {
		return err
	}
	if !removed {
		return common.ErrRelationNotFound
	}

	return nil
}

// Subscriptions lists the authors userID follows, most recent subscription
// first, along with the total count.
func (s *ActionService) Subscriptions(ctx context.Context, userID int64, page models.Page, recipesLimit int) ([]*models.AuthorCard, int64, error) {
	var cards []*models.AuthorCard
	var total int64

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnlySnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		store := s.relations.On(tx)

		ids, err := store.ListObjectsFor(ctx, models.RelationSubscription, userID, page)
		if err != nil {
			return err
		}
		if total, err = store.CountObjectsFor(ctx, models.RelationSubscription, userID); err != nil {
			return err
		}

		usersRepo := s.repomanager.Users(tx)
		for _, id := range ids {
			author, err := usersRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			card, err := s.authorCard(ctx, tx, author, true, recipesLimit)
			if err != nil {
				return err
			}
			cards = append(cards, card)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return cards, total, nil
}

func (s *ActionService) authorCard(ctx context.Context, db dbx.DBTX, author *models.User, subscribed bool, recipesLimit int) (*models.AuthorCard, error) {
	repo := s.repomanager.Recipes(db)
	filter := models.RecipeFilter{AuthorID: author.ID, Page: models.Page{Limit: recipesLimit}}

	list, err := repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	card := &models.AuthorCard{User: author, IsSubscribed: subscribed, RecipesCount: count}
	for _, r := range list {
		card.Recipes = append(card.Recipes, r.Summary())
	}

	return card, nil
}
