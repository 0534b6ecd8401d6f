// Package sync reconciles local progress with the remote copy.
package sync

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/davrk/sharpen/internal/api"
	"github.com/davrk/sharpen/internal/model"
	"github.com/davrk/sharpen/internal/progress"
)

// Remote is the subset of the API client the syncer needs.
type Remote interface {
	CheckAuth(ctx context.Context) (api.AuthStatus, error)
	FetchProgress(ctx context.Context) (*model.UserData, error)
	PushProgress(ctx context.Context, data model.UserData) error
}

// Syncer merges remote user data into the local store and pushes the
// result back. Local data always survives a failed sync untouched.
type Syncer struct {
	remote Remote
	store  *progress.Store
	logger *log.Logger
}

func New(remote Remote, store *progress.Store, logger *log.Logger) *Syncer {
	return &Syncer{remote: remote, store: store, logger: logger}
}

// Result reports what a sync run did.
type Result struct {
	Pulled bool
	Pushed bool
	Email  string
}

// Sync pulls the remote copy, merges it field-by-field with local data,
// saves the merged result locally, and uploads it. A pull that finds no
// remote record still pushes the local data to seed the server.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	status, err := s.remote.CheckAuth(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check auth: %w", err)
	}
	if !status.Authenticated {
		return Result{}, api.ErrNotAuthenticated
	}

	local, err := s.store.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load local progress: %w", err)
	}

	res := Result{Email: status.Email}

	remote, err := s.remote.FetchProgress(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch remote progress: %w", err)
	}

	merged := local
	if remote != nil {
		merged = progress.Merge(local, *remote)
		if merged, err = s.store.Replace(ctx, merged); err != nil {
			return Result{}, fmt.Errorf("failed to save merged progress: %w", err)
		}
		res.Pulled = true
		s.logger.Debug("merged remote progress", "email", status.Email)
	}

	if err := s.remote.PushProgress(ctx, merged); err != nil {
		// Push failure is not fatal: the merged data is already local
		// and the next sync will retry the upload.
		s.logger.Debug("failed to push progress", "err", err)
		return res, nil
	}
	res.Pushed = true
	return res, nil
}

// PushOnly uploads local progress without pulling first. Used after a
// session completes, where local data is strictly newer.
func (s *Syncer) PushOnly(ctx context.Context) error {
	status, err := s.remote.CheckAuth(ctx)
	if err != nil || !status.Authenticated {
		return api.ErrNotAuthenticated
	}
	local, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load local progress: %w", err)
	}
	if err := s.remote.PushProgress(ctx, local); err != nil {
		return fmt.Errorf("failed to push progress: %w", err)
	}
	return nil
}
