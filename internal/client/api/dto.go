package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"shelfsync/internal/client/models"
)

// Wire formats inherited from the backend: expiry dates are plain calendar
// dates, timestamps are RFC 1123 GMT (the HTTP date format).
const wireDateLayout = "2006-01-02"

type locationDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (d *locationDTO) toModel() models.Location {
	return models.Location{ServerID: d.ID, Name: d.Name}
}

type imageDTO struct {
	ID        int64  `json:"id,omitempty"`
	ImageData string `json:"image_data,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	Extname   string `json:"original_extname,omitempty"`
}

type articleDTO struct {
	Name    string     `json:"name"`
	Barcode string     `json:"barcode"`
	Images  []imageDTO `json:"images,omitempty"`
}

type entryDTO struct {
	ID             int64       `json:"id,omitempty"`
	Description    string      `json:"description"`
	Amount         int         `json:"amount"`
	ExpirationDate string      `json:"expiration_date"`
	LocationID     int64       `json:"location_id,omitempty"`
	CreatedAt      string      `json:"created_at,omitempty"`
	UpdatedAt      string      `json:"updated_at,omitempty"`
	DeletedAt      string      `json:"deleted_at,omitempty"`
	Article        *articleDTO `json:"article,omitempty"`
}

// entryToDTO shapes an outgoing create/update payload. Only images the
// server has not seen yet are attached.
func entryToDTO(e *models.ProductEntry, images []models.ArticleImage) *entryDTO {
	dto := &entryDTO{
		Description:    e.Description,
		Amount:         e.Amount,
		ExpirationDate: e.ExpirationDate.Format(wireDateLayout),
	}
	if e.ServerID > 0 {
		dto.ID = e.ServerID
	}
	if e.Article != nil {
		art := &articleDTO{Name: e.Article.Name, Barcode: e.Article.Barcode}
		for _, img := range images {
			if img.ServerID != 0 || len(img.ImageData) == 0 {
				continue
			}
			art.Images = append(art.Images, imageDTO{
				ImageData: base64.StdEncoding.EncodeToString(img.ImageData),
				MimeType:  "image/jpeg",
				Extname:   ".jpg",
			})
		}
		dto.Article = art
	}
	return dto
}

func (d *entryDTO) toModel() (*models.ProductEntry, error) {
	e := &models.ProductEntry{
		ServerID:    d.ID,
		Description: d.Description,
		Amount:      d.Amount,
	}

	var err error
	if d.ExpirationDate != "" {
		e.ExpirationDate, err = time.ParseInLocation(wireDateLayout, d.ExpirationDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad expiration_date %q: %w", d.ExpirationDate, err)
		}
	}
	if e.CreatedAt, err = parseWireTime(d.CreatedAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseWireTime(d.UpdatedAt); err != nil {
		return nil, err
	}
	if d.DeletedAt != "" {
		t, err := parseWireTime(d.DeletedAt)
		if err != nil {
			return nil, err
		}
		e.DeletedAt = &t
	}

	if d.Article != nil {
		e.Article = &models.Article{Name: d.Article.Name, Barcode: d.Article.Barcode}
		for _, img := range d.Article.Images {
			e.Article.Images = append(e.Article.Images, models.ArticleImage{ServerID: img.ID})
		}
	}
	return e, nil
}

func parseWireTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := http.ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
