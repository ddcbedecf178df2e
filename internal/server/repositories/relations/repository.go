package relations

import (
	"context"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

// Repository persists relation edges. Object ids refer to recipes or users
// depending on the kind.
type Repository interface {
	// Add inserts an edge. It returns false when the edge already existed.
	Add(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error)
	// Remove deletes an edge. It returns false when there was nothing to delete.
	Remove(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error)
	Exists(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error)
	// ListObjects returns object ids newest first, ties broken by edge id.
	ListObjects(ctx context.Context, kind models.RelationKind, subjectID int64, page models.Page) ([]int64, error)
	Count(ctx context.Context, kind models.RelationKind, subjectID int64) (int64, error)
	// Present returns the subset of objectIDs the subject has an edge to.
	Present(ctx context.Context, kind models.RelationKind, subjectID int64, objectIDs []int64) (map[int64]bool, error)
}
