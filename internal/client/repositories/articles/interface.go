package articles

import (
	"context"

	"shelfsync/internal/client/models"
)

// Repository describes CRUD and query operations for Article objects and
// the images they own.
type Repository interface {
	// Add inserts a new article. A missing LocalID is generated.
	Add(ctx context.Context, a *models.Article) error

	// Update overwrites the mutable fields (name, barcode) of an existing
	// article by LocalID.
	Update(ctx context.Context, a *models.Article) error

	// FindByLocalID returns the article with the given local id, or
	// common.ErrorNotFound.
	FindByLocalID(ctx context.Context, localID string) (*models.Article, error)

	// FindByBarcode returns the single article carrying the given non-empty
	// barcode, or common.ErrorNotFound.
	FindByBarcode(ctx context.Context, barcode string) (*models.Article, error)

	// DeleteByLocalID removes an article and, via cascade, its images.
	DeleteByLocalID(ctx context.Context, localID string) error

	// CountEntries returns how many product entries reference the article.
	CountEntries(ctx context.Context, localID string) (int64, error)

	// AddImage attaches an image to an article. A missing LocalID is generated.
	AddImage(ctx context.Context, img *models.ArticleImage) error

	// ListImages returns all images owned by an article.
	ListImages(ctx context.Context, articleID string) ([]models.ArticleImage, error)
}
