// Package services contains the application services of the ShelfSync
// client: the reconciler driving the pull-then-push sync protocol, and the
// session service owning the logged-in account context.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shelfsync/internal/client/api"
	"shelfsync/internal/client/models"
	"shelfsync/internal/client/store"
	"shelfsync/internal/common"
	"shelfsync/internal/logging"
)

// SyncPhase is the reconciler's position inside one sync run.
type SyncPhase string

const (
	PhaseIdle     SyncPhase = "idle"
	PhasePulling  SyncPhase = "pulling"
	PhaseMerging  SyncPhase = "merging"
	PhasePushing  SyncPhase = "pushing"
	PhaseComplete SyncPhase = "complete"
	PhaseFailed   SyncPhase = "failed"
)

// defaultLocationName labels the location created on first offline use.
const defaultLocationName = "Default"

// SyncService reconciles the local dataset with the server: pull remote
// changes, merge them, then push local changes one at a time. Only one run
// may be in flight; a second Sync call while a run is active returns
// common.ErrSyncInProgress.
type SyncService struct {
	api   api.Client
	store *store.Store
	log   logging.Logger

	runMu sync.Mutex

	phaseMu sync.Mutex
	phase   SyncPhase

	// now is a test seam for the completion watermark.
	now func() time.Time
}

func NewSyncService(apiClient api.Client, st *store.Store, log logging.Logger) *SyncService {
	return &SyncService{
		api:   apiClient,
		store: st,
		log:   log,
		phase: PhaseIdle,
		now:   time.Now,
	}
}

// Phase reports where the current (or last) run is.
func (s *SyncService) Phase() SyncPhase {
	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()
	return s.phase
}

func (s *SyncService) setPhase(ctx context.Context, p SyncPhase) {
	s.phaseMu.Lock()
	s.phase = p
	s.phaseMu.Unlock()
	s.log.Debug(ctx, "sync phase", "phase", string(p))
}

// Sync executes one complete run for the given account. On failure the
// last-sync watermark is left untouched so the next run re-attempts the
// same window; work already pushed is not rolled back.
func (s *SyncService) Sync(ctx context.Context, account string) error {
	if account == "" {
		return common.ErrNotLoggedIn
	}
	if !s.runMu.TryLock() {
		return common.ErrSyncInProgress
	}
	defer s.runMu.Unlock()

	if err := s.run(ctx, account); err != nil {
		s.setPhase(ctx, PhaseFailed)
		s.log.Error(ctx, "sync failed", "account", account, "error", err)
		return err
	}
	s.setPhase(ctx, PhaseComplete)
	return nil
}

func (s *SyncService) run(ctx context.Context, account string) error {
	loc, err := s.ensureLocation(ctx)
	if err != nil {
		return fmt.Errorf("location bootstrap: %w", err)
	}

	s.setPhase(ctx, PhasePulling)
	since, err := s.store.SyncState.GetLastSync(ctx, account)
	if err != nil {
		return err
	}
	updated, deleted, err := s.api.FetchChangedEntries(ctx, loc.ServerID, since)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	s.log.Info(ctx, "pulled remote changes",
		"updated", len(updated), "deleted", len(deleted), "first_run", since == nil)

	s.setPhase(ctx, PhaseMerging)
	s.mergeRemoteChanges(ctx, loc, updated, deleted)

	s.setPhase(ctx, PhasePushing)
	pushed, err := s.pushLocalChanges(ctx, loc)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	// The watermark is local completion time corrected by the measured
	// clock skew, so a drifting device clock cannot hide server-side
	// changes from the next run.
	watermark := s.now().Add(s.api.TimeSkew())
	if err := s.store.SyncState.SetLastSync(ctx, account, watermark); err != nil {
		return err
	}

	s.log.Info(ctx, "sync complete", "pushed", pushed,
		"skew_ms", s.api.TimeSkew().Milliseconds())
	return nil
}

// ensureLocation resolves the device's default location and, when it has no
// server identity yet, adopts one of the account's remote locations or
// registers the local one on the server.
func (s *SyncService) ensureLocation(ctx context.Context) (*models.Location, error) {
	loc, err := s.store.EnsureDefaultLocation(ctx, defaultLocationName)
	if err != nil {
		return nil, err
	}
	if loc.ServerID != 0 {
		return loc, nil
	}

	remotes, err := s.api.FetchChangedLocations(ctx)
	if err != nil {
		return nil, err
	}
	if len(remotes) > 0 {
		loc.ServerID = remotes[0].ServerID
		loc.Name = remotes[0].Name
	} else {
		created, err := s.api.CreateLocation(ctx, loc)
		if err != nil {
			return nil, err
		}
		loc.ServerID = created.ServerID
	}
	if err := s.store.Locations.Update(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// mergeRemoteChanges applies the pulled sets to the store. Each record is
// independent: a failure is logged and skipped, never fatal to the run.
func (s *SyncService) mergeRemoteChanges(ctx context.Context, loc *models.Location, updated, deleted []*models.ProductEntry) {
	for _, e := range updated {
		e.LocationID = loc.LocalID
		e.Location = loc
		e.InSync = true
		if _, err := s.store.UpdateOrAddEntry(ctx, e); err != nil {
			s.log.Error(ctx, "failed to merge remote entry", "server_id", e.ServerID, "error", err)
		}
	}

	for _, d := range deleted {
		removed, err := s.store.ApplyTombstone(ctx, d)
		if err != nil {
			s.log.Error(ctx, "failed to apply remote tombstone", "server_id", d.ServerID, "error", err)
			continue
		}
		if !removed {
			s.log.Debug(ctx, "remote delete skipped, local edit wins", "server_id", d.ServerID)
		}
	}
}

// pushLocalChanges processes the out-of-sync queue strictly one entry at a
// time: each push must apply the server's response before the next one is
// attempted, since article dedup and id assignment depend on it. A failed
// push aborts the remaining queue; completed items keep their synced state.
func (s *SyncService) pushLocalChanges(ctx context.Context, loc *models.Location) (int, error) {
	queue, err := s.store.Entries.GetAllOutOfSync(ctx)
	if err != nil {
		return 0, err
	}

	pushed := 0
	for _, e := range queue {
		if err := s.pushOne(ctx, loc, e); err != nil {
			return pushed, fmt.Errorf("entry %s: %w", e.LocalID, err)
		}
		pushed++
	}
	return pushed, nil
}

func (s *SyncService) pushOne(ctx context.Context, loc *models.Location, e *models.ProductEntry) error {
	// A tombstone never pushed to the server has nothing to delete
	// remotely: it just vanishes.
	if e.IsTombstone() && e.NeverSynced() {
		return s.store.Entries.DeleteByLocalID(ctx, e.LocalID)
	}

	if err := s.hydrate(ctx, loc, e); err != nil {
		return err
	}

	if e.IsTombstone() {
		if _, err := s.api.DeleteEntry(ctx, e); err != nil {
			return s.persistAfterFailure(ctx, e, err)
		}
		return s.store.Entries.DeleteByLocalID(ctx, e.LocalID)
	}

	var (
		resp *models.ProductEntry
		err  error
	)
	if e.NeverSynced() {
		resp, err = s.api.CreateEntry(ctx, e, e.Article.Images)
	} else {
		resp, err = s.api.UpdateEntry(ctx, e, e.Article.Images)
	}
	if err != nil {
		return s.persistAfterFailure(ctx, e, err)
	}
	return s.applyServerResponse(ctx, e, resp)
}

func (s *SyncService) hydrate(ctx context.Context, loc *models.Location, e *models.ProductEntry) error {
	art, err := s.store.Articles.FindByLocalID(ctx, e.ArticleID)
	if err != nil {
		return fmt.Errorf("article lookup: %w", err)
	}
	art.Images, err = s.store.Articles.ListImages(ctx, art.LocalID)
	if err != nil {
		return err
	}
	e.Article = art
	e.Location = loc
	return nil
}

// persistAfterFailure writes the record back with its latest known state
// before the queue is abandoned, then propagates the push error.
func (s *SyncService) persistAfterFailure(ctx context.Context, e *models.ProductEntry, pushErr error) error {
	if err := s.store.Entries.Update(ctx, e); err != nil {
		s.log.Error(ctx, "failed to persist entry after push failure",
			"local_id", e.LocalID, "error", err)
	}

	var ve *api.ValidationError
	if errors.As(pushErr, &ve) {
		s.log.Warn(ctx, "server rejected entry, will retry next run",
			"local_id", e.LocalID, "reason", ve.Error())
	}
	return pushErr
}

// applyServerResponse copies the authoritative post-push representation
// into the local record and marks it in sync.
func (s *SyncService) applyServerResponse(ctx context.Context, e *models.ProductEntry, resp *models.ProductEntry) error {
	e.ServerID = resp.ServerID
	e.Amount = resp.Amount
	e.Description = resp.Description
	if !resp.ExpirationDate.IsZero() {
		e.ExpirationDate = resp.ExpirationDate
	}
	if !resp.CreatedAt.IsZero() {
		e.CreatedAt = resp.CreatedAt
	}
	if !resp.UpdatedAt.IsZero() {
		e.UpdatedAt = resp.UpdatedAt
	}

	if resp.Article != nil && e.Article != nil {
		e.Article.Name = resp.Article.Name
		e.Article.Barcode = resp.Article.Barcode
		if err := s.store.Articles.Update(ctx, e.Article); err != nil {
			s.log.Error(ctx, "failed to apply article fields from server",
				"article_id", e.Article.LocalID, "error", err)
		}
	}

	e.InSync = true
	return s.store.Entries.Update(ctx, e)
}
