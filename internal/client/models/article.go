package models

// Article is a product kind shared by any number of entries. A non-empty
// Barcode is a natural key: the store keeps at most one article per barcode.
type Article struct {
	LocalID string
	Name    string
	Barcode string

	// Images owned by this article. Populated on demand; an image cannot
	// outlive its article.
	Images []ArticleImage
}

// HasBarcode reports whether the article carries a usable natural key.
func (a *Article) HasBarcode() bool {
	return a != nil && a.Barcode != ""
}

// ArticleImage is a photo of an article. ImageData may be nil if only the
// server reference was received; the payload is then fetched lazily.
type ArticleImage struct {
	LocalID   string
	ServerID  int64
	ArticleID string
	ImageData []byte
}
