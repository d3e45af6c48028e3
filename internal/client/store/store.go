// Package store is the single in-process owner of the persisted dataset.
// Every merge path funnels through it so the uniqueness invariants hold:
// at most one article per non-empty barcode, at most one entry per server
// id. Merging is find-then-update, never a blind insert.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shelfsync/internal/client/models"
	"shelfsync/internal/client/repositories/articles"
	"shelfsync/internal/client/repositories/entries"
	"shelfsync/internal/client/repositories/locations"
	"shelfsync/internal/client/repositories/syncstate"
	"shelfsync/internal/common"
	"shelfsync/internal/dbx"
)

// Store bundles the per-entity repositories behind one facade shared by the
// UI layer and the reconciler. The reconciler is the only writer during a
// sync run; readers may observe partially merged state.
type Store struct {
	db *sql.DB

	Locations locations.Repository
	Articles  articles.Repository
	Entries   entries.Repository
	SyncState syncstate.Repository
}

func New(db *sql.DB) *Store {
	return &Store{
		db:        db,
		Locations: locations.NewSQLiteRepository(db),
		Articles:  articles.NewSQLiteRepository(db),
		Entries:   entries.NewSQLiteRepository(db),
		SyncState: syncstate.NewSQLiteRepository(db),
	}
}

// UpdateOrAddArticle upserts an article keyed by its barcode. When a local
// article with the same non-empty barcode exists, its mutable fields are
// updated and any newly received images are attached; the existing record
// (and its local id and image ownership) survives. Without a barcode match
// the incoming article is inserted as new.
func (s *Store) UpdateOrAddArticle(ctx context.Context, incoming *models.Article) (*models.Article, error) {
	var result *models.Article
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = mergeArticle(ctx, articles.NewSQLiteRepository(tx), incoming)
		return err
	})
	return result, err
}

func mergeArticle(ctx context.Context, repo articles.Repository, incoming *models.Article) (*models.Article, error) {
	if incoming.HasBarcode() {
		found, err := repo.FindByBarcode(ctx, incoming.Barcode)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		if found != nil {
			found.Name = incoming.Name
			if err := repo.Update(ctx, found); err != nil {
				return nil, err
			}
			if err := attachNewImages(ctx, repo, found, incoming.Images); err != nil {
				return nil, err
			}
			return found, nil
		}
	}

	if err := repo.Add(ctx, incoming); err != nil {
		return nil, err
	}
	for i := range incoming.Images {
		incoming.Images[i].ArticleID = incoming.LocalID
		if err := repo.AddImage(ctx, &incoming.Images[i]); err != nil {
			return nil, err
		}
	}
	return incoming, nil
}

// attachNewImages adds incoming images the article does not already own,
// matching on server identity.
func attachNewImages(ctx context.Context, repo articles.Repository, owner *models.Article, incoming []models.ArticleImage) error {
	existing, err := repo.ListImages(ctx, owner.LocalID)
	if err != nil {
		return err
	}
	known := make(map[int64]struct{}, len(existing))
	for _, img := range existing {
		known[img.ServerID] = struct{}{}
	}

	for _, img := range incoming {
		if img.ServerID != 0 {
			if _, ok := known[img.ServerID]; ok {
				continue
			}
		}
		img.ArticleID = owner.LocalID
		img.LocalID = ""
		if err := repo.AddImage(ctx, &img); err != nil {
			return err
		}
		existing = append(existing, img)
	}
	owner.Images = existing
	return nil
}

// UpdateOrAddEntry merges a server-shaped entry into the store: the article
// is resolved first (barcode dedup), then the entry is matched by server id
// and overwritten in place, or inserted as new. A matched record that still
// carries unpushed local changes (an edit or a tombstone) is returned
// untouched: the local change wins until it is pushed, same as in
// ApplyTombstone.
func (s *Store) UpdateOrAddEntry(ctx context.Context, incoming *models.ProductEntry) (*models.ProductEntry, error) {
	if incoming.Article == nil {
		return nil, fmt.Errorf("entry %d has no article", incoming.ServerID)
	}

	var result *models.ProductEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		artRepo := articles.NewSQLiteRepository(tx)
		entryRepo := entries.NewSQLiteRepository(tx)

		art, err := mergeArticle(ctx, artRepo, incoming.Article)
		if err != nil {
			return fmt.Errorf("failed to merge article: %w", err)
		}
		incoming.Article = art
		incoming.ArticleID = art.LocalID

		found, err := entryRepo.FindByServerID(ctx, incoming.ServerID, true)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		if found != nil {
			if !found.InSync {
				result = found
				return nil
			}
			found.Amount = incoming.Amount
			found.Description = incoming.Description
			found.ExpirationDate = incoming.ExpirationDate
			found.CreatedAt = incoming.CreatedAt
			found.UpdatedAt = incoming.UpdatedAt
			found.ArticleID = art.LocalID
			found.Article = art
			found.InSync = incoming.InSync
			if err := entryRepo.Update(ctx, found); err != nil {
				return err
			}
			result = found
			return nil
		}

		if err := entryRepo.Add(ctx, incoming); err != nil {
			return err
		}
		result = incoming
		return nil
	})
	return result, err
}

// ApplyTombstone handles a server-side deletion. The local record is removed
// only if it has no unpushed edits (it is in sync, or is itself already a
// tombstone); otherwise the local edit wins until it is pushed or discarded.
// Returns whether a local record was removed.
func (s *Store) ApplyTombstone(ctx context.Context, deleted *models.ProductEntry) (bool, error) {
	var removed bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		entryRepo := entries.NewSQLiteRepository(tx)

		found, err := entryRepo.FindByServerID(ctx, deleted.ServerID, true)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if !found.InSync && !found.IsTombstone() {
			return nil
		}
		if err := entryRepo.DeleteByLocalID(ctx, found.LocalID); err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}

// RemoveArticleIfOrphan deletes an article once no entries reference it.
// Returns whether the article was removed.
func (s *Store) RemoveArticleIfOrphan(ctx context.Context, articleID string) (bool, error) {
	n, err := s.Articles.CountEntries(ctx, articleID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.Articles.DeleteByLocalID(ctx, articleID); err != nil {
		return false, err
	}
	return true, nil
}

// ClearSynced drops everything owned by the previous account context:
// entries fully reflected on the server are deleted and locations are
// severed from their server identities. Unpushed local changes survive so
// the dataset stays usable offline.
func (s *Store) ClearSynced(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := entries.NewSQLiteRepository(tx).DeleteSynced(ctx); err != nil {
			return err
		}
		return locations.NewSQLiteRepository(tx).ClearServerIDs(ctx)
	})
}

// EnsureDefaultLocation returns the device's default location, creating it
// locally (never synced) on first use.
func (s *Store) EnsureDefaultLocation(ctx context.Context, name string) (*models.Location, error) {
	loc, err := s.Locations.GetDefault(ctx)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	loc = &models.Location{Name: name, IsDefault: true}
	if err := s.Locations.Add(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// AddEntry records a brand-new local entry: never synced, out of sync,
// timestamped now.
func (s *Store) AddEntry(ctx context.Context, e *models.ProductEntry) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	e.ExpirationDate = models.DateOnly(e.ExpirationDate)
	e.InSync = false

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if e.Article != nil {
			art, err := mergeArticle(ctx, articles.NewSQLiteRepository(tx), e.Article)
			if err != nil {
				return err
			}
			e.Article = art
			e.ArticleID = art.LocalID
		}
		return entries.NewSQLiteRepository(tx).Add(ctx, e)
	})
}

// TouchEntry marks a local modification: updated timestamp, out of sync.
func (s *Store) TouchEntry(ctx context.Context, e *models.ProductEntry) error {
	e.UpdatedAt = time.Now().UTC()
	e.InSync = false
	return s.Entries.Update(ctx, e)
}

// SoftDeleteEntry tombstones an entry so the deletion can be synchronized.
func (s *Store) SoftDeleteEntry(ctx context.Context, localID string) error {
	e, err := s.Entries.FindByLocalID(ctx, localID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	e.DeletedAt = &now
	e.UpdatedAt = now
	e.InSync = false
	return s.Entries.Update(ctx, e)
}

// ListEntries returns all live entries with their articles hydrated.
func (s *Store) ListEntries(ctx context.Context) ([]models.ProductEntry, error) {
	list, err := s.Entries.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range list {
		art, err := s.Articles.FindByLocalID(ctx, list[i].ArticleID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		list[i].Article = art
	}
	return list, nil
}
