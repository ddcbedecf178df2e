package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/metrics"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
)

// RelationStore manages favorite, shopping cart and subscription edges.
// Uniqueness is enforced by storage; concurrent adds of the same edge leave
// exactly one row and report created=false to the losers.
type RelationStore struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
}

func NewRelationStore(db dbx.DBTX, m repomanager.RepositoryManager) *RelationStore {
	return &RelationStore{db: db, repomanager: m}
}

// On returns a store that runs its queries on db, typically a transaction.
func (s *RelationStore) On(db dbx.DBTX) *RelationStore {
	return &RelationStore{db: db, repomanager: s.repomanager}
}

func checkKind(kind models.RelationKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown relation kind %q", common.ErrorValidation, kind)
	}
	return nil
}

// ToggleAdd creates the edge (subject, object) of kind. It reports false if
// the edge already existed. Self-reference is rejected before the uniqueness
// check for kinds that forbid it.
func (s *RelationStore) ToggleAdd(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error) {
	if err := checkKind(kind); err != nil {
		return false, err
	}
	if !kind.AllowsSelfReference() && subjectID == objectID {
		metrics.RecordRelationToggle(kind.String(), "add", false, common.ErrSelfReference)
		return false, common.ErrSelfReference
	}

	created, err := s.repomanager.Relations(s.db).Add(ctx, kind, subjectID, objectID)
	if errors.Is(err, common.ErrDuplicateRelation) {
		created, err = false, nil
	}
	metrics.RecordRelationToggle(kind.String(), "add", created, err)

	return created, err
}

// ToggleRemove deletes the edge and reports whether it existed.
func (s *RelationStore) ToggleRemove(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error) {
	if err := checkKind(kind); err != nil {
		return false, err
	}

	removed, err := s.repomanager.Relations(s.db).Remove(ctx, kind, subjectID, objectID)
	metrics.RecordRelationToggle(kind.String(), "remove", removed, err)

	return removed, err
}

func (s *RelationStore) Exists(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error) {
	if err := checkKind(kind); err != nil {
		return false, err
	}
	return s.repomanager.Relations(s.db).Exists(ctx, kind, subjectID, objectID)
}

// ListObjectsFor returns object ids for subject, newest edge first.
func (s *RelationStore) ListObjectsFor(ctx context.Context, kind models.RelationKind, subjectID int64, page models.Page) ([]int64, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.repomanager.Relations(s.db).ListObjects(ctx, kind, subjectID, page)
}

func (s *RelationStore) CountObjectsFor(ctx context.Context, kind models.RelationKind, subjectID int64) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	return s.repomanager.Relations(s.db).Count(ctx, kind, subjectID)
}

// Present reports which of objectIDs the subject is related to.
// An anonymous subject (id 0) is related to nothing.
func (s *RelationStore) Present(ctx context.Context, kind models.RelationKind, subjectID int64, objectIDs []int64) (map[int64]bool, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if subjectID == 0 || len(objectIDs) == 0 {
		return map[int64]bool{}, nil
	}
	return s.repomanager.Relations(s.db).Present(ctx, kind, subjectID, objectIDs)
}
