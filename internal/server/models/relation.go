package models

import "time"

// RelationKind names a family of relation edges. Each kind decides what its
// objects are and whether an edge may point back at its subject.
type RelationKind string

const (
	RelationFavorite     RelationKind = "favorite"
	RelationShoppingCart RelationKind = "shopping_cart"
	RelationSubscription RelationKind = "subscription"
)

// RelationKinds lists every supported kind.
var RelationKinds = []RelationKind{RelationFavorite, RelationShoppingCart, RelationSubscription}

func (k RelationKind) Valid() bool {
	switch k {
	case RelationFavorite, RelationShoppingCart, RelationSubscription:
		return true
	}
	return false
}

// TargetsUser reports whether objects of this kind are users (otherwise recipes).
func (k RelationKind) TargetsUser() bool {
	return k == RelationSubscription
}

// AllowsSelfReference reports whether subject and object may be equal.
// Only meaningful for kinds that target users.
func (k RelationKind) AllowsSelfReference() bool {
	return !k.TargetsUser()
}

func (k RelationKind) String() string { return string(k) }

// RelationEdge is a directed (subject, object) membership fact. Edges are
// created and deleted, never updated.
type RelationEdge struct {
	ID        int64
	Kind      RelationKind
	SubjectID int64
	ObjectID  int64
	CreatedAt time.Time
}
