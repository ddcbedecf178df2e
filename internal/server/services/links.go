package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/server/metrics"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/foodgram/internal/shortcode"
)

// ShortLinkPrefix is the path under which short codes are served.
const ShortLinkPrefix = "/r/"

// LinkService issues and resolves recipe share links.
type LinkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *shortcode.Codec
	baseURL     string
	fallbackURL string
}

func NewLinkService(db *sql.DB, m repomanager.RepositoryManager, codec *shortcode.Codec, baseURL, fallbackURL string) *LinkService {
	return &LinkService{
		db:          db,
		repomanager: m,
		codec:       codec,
		baseURL:     strings.TrimRight(baseURL, "/"),
		fallbackURL: fallbackURL,
	}
}

// ShortLink returns the absolute share link of an existing recipe.
func (s *LinkService) ShortLink(ctx context.Context, recipeID int64) (string, error) {
	if _, err := s.repomanager.Recipes(s.db).GetByID(ctx, recipeID); err != nil {
		return "", err
	}

	code, err := s.codec.Encode(recipeID)
	if err != nil {
		return "", fmt.Errorf("error encoding short link: %w", err)
	}
	return s.baseURL + ShortLinkPrefix + code, nil
}

// Resolve maps code to the recipe page path. Codes that do not decode or
// point at a deleted recipe resolve to the fallback URL. Storage errors are
// the only failure.
func (s *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	id, err := s.codec.Decode(code)
	if err != nil {
		metrics.RecordShortLinkResolution(metrics.LinkUndecoded)
		return s.fallbackURL, nil
	}

	if _, err := s.repomanager.Recipes(s.db).GetByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			metrics.RecordShortLinkResolution(metrics.LinkMissing)
			return s.fallbackURL, nil
		}
		metrics.RecordShortLinkResolution(metrics.LinkFailed)
		return "", err
	}

	metrics.RecordShortLinkResolution(metrics.LinkResolved)
	return fmt.Sprintf("/recipes/%d/", id), nil
}
