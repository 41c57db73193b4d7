package viewstate

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Edelbertschen/taskfuchs-sub005/store"
)

// Service defines the view state operations exposed to the API layer.
// The caller has already resolved userID from an authenticated request.
type Service interface {
	// Get returns the stored document, or the default document when nothing is stored.
	// It never writes.
	Get(ctx context.Context, userID string) (*structpb.Value, error)

	// Replace stores doc as the user's document, discarding the previous one.
	Replace(ctx context.Context, userID string, doc *structpb.Value) (*structpb.Value, error)

	// MergePatch deep-merges patch onto the stored (or default) document and stores the result.
	// Concurrent patches for one user are last-write-wins.
	MergePatch(ctx context.Context, userID string, patch *structpb.Value) (*structpb.Value, error)
}

// Store is the persistence the service depends on; *store.Store satisfies it.
type Store interface {
	GetViewState(ctx context.Context, find *store.FindViewState) (*store.ViewState, error)
	UpsertViewState(ctx context.Context, upsert *store.UpsertViewState) (*store.ViewState, error)
}
