package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/relations"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/tags"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tags(db dbx.DBTX) tags.Repository
	Ingredients(db dbx.DBTX) ingredients.Repository
	Recipes(db dbx.DBTX) recipes.Repository
	Relations(db dbx.DBTX) relations.Repository
}
