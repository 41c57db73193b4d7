// Package viewstate stores one schema-less UI layout document per user.
//
// Documents are modeled as google.protobuf.Value trees, so any JSON value
// round-trips unchanged, including fields the server does not know about.
// Reads fall back to DefaultDocument; MergePatch deep-merges objects and
// replaces everything else (arrays and null included).
package viewstate

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Edelbertschen/taskfuchs-sub005/store"
)

type service struct {
	store Store
}

// NewService creates a view state service on top of st.
func NewService(st Store) Service {
	return &service{store: st}
}

func (s *service) Get(ctx context.Context, userID string) (*structpb.Value, error) {
	doc, err := s.load(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return DefaultDocument(), nil
	}
	return doc, nil
}

func (s *service) Replace(ctx context.Context, userID string, doc *structpb.Value) (*structpb.Value, error) {
	return s.save(ctx, userID, doc)
}

func (s *service) MergePatch(ctx context.Context, userID string, patch *structpb.Value) (*structpb.Value, error) {
	// The base is read from the database; merging onto a cached copy could undo a newer write.
	base, err := s.load(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = DefaultDocument()
	}
	return s.save(ctx, userID, Merge(base, patch))
}

// load returns the stored document, or nil if the user has none.
func (s *service) load(ctx context.Context, userID string, skipCache bool) (*structpb.Value, error) {
	viewState, err := s.store.GetViewState(ctx, &store.FindViewState{UserID: &userID, SkipCache: skipCache})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get view state")
	}
	if viewState == nil {
		return nil, nil
	}
	doc, err := ParseDocument([]byte(viewState.State))
	if err != nil {
		// Rows are only written through save, so this means the row was edited by hand.
		slog.Error("stored view state is not valid JSON",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, errors.Wrap(err, "failed to decode stored view state")
	}
	return doc, nil
}

func (s *service) save(ctx context.Context, userID string, doc *structpb.Value) (*structpb.Value, error) {
	doc = normalize(doc)
	data, err := MarshalDocument(doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpsertViewState(ctx, &store.UpsertViewState{
		UserID: userID,
		State:  string(data),
	}); err != nil {
		return nil, errors.Wrap(err, "failed to upsert view state")
	}
	return doc, nil
}
