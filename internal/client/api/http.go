package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"shelfsync/internal/client/models"
)

// HTTPClient implements Client against the backend's REST/JSON API.
// Authentication is a cookie session established by Login; the cookie jar
// is replaced on every Login/Register so a stale session is never reused.
type HTTPClient struct {
	baseURL *url.URL
	hc      *http.Client

	mu   sync.Mutex
	skew time.Duration
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		baseURL: u,
		hc:      &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// TimeSkew returns the last measured serverTime - localTime offset.
func (c *HTTPClient) TimeSkew() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skew
}

func (c *HTTPClient) resetSession() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	c.hc.Jar = jar
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, account, password string) error {
	if err := c.resetSession(); err != nil {
		return err
	}
	body := map[string]any{"user": map[string]string{"login": account, "password": password}}
	var out struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	return c.doJSON(ctx, http.MethodPost, "users/sign_in", nil, body, &out)
}

func (c *HTTPClient) Register(ctx context.Context, account, email, password string) error {
	if err := c.resetSession(); err != nil {
		return err
	}
	user := map[string]string{"username": account, "password": password}
	if email != "" {
		user["email"] = email
	}
	var out struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	return c.doJSON(ctx, http.MethodPost, "users", nil, map[string]any{"user": user}, &out)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "users/sign_out", nil, nil, &out); err != nil {
		return err
	}
	if out.Status != "success" {
		return fmt.Errorf("%w: sign out rejected", ErrUnavailable)
	}
	return nil
}

func (c *HTTPClient) FetchChangedLocations(ctx context.Context) ([]models.Location, error) {
	var out struct {
		Locations []locationDTO `json:"locations"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "locations/index_mine_changed", nil, nil, &out); err != nil {
		return nil, err
	}
	result := make([]models.Location, 0, len(out.Locations))
	for i := range out.Locations {
		result = append(result, out.Locations[i].toModel())
	}
	return result, nil
}

func (c *HTTPClient) CreateLocation(ctx context.Context, l *models.Location) (*models.Location, error) {
	body := map[string]any{"location": map[string]string{"name": l.Name}}
	var out struct {
		Location locationDTO `json:"location"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "locations", nil, body, &out); err != nil {
		return nil, err
	}
	created := out.Location.toModel()
	return &created, nil
}

func (c *HTTPClient) FetchChangedEntries(ctx context.Context, locationServerID int64, since *time.Time) (updated, deleted []*models.ProductEntry, err error) {
	query := url.Values{}
	if since != nil {
		query.Set("from_timestamp", since.UTC().Format(http.TimeFormat))
	}

	var out struct {
		ProductEntries        []entryDTO `json:"product_entries"`
		DeletedProductEntries []entryDTO `json:"deleted_product_entries"`
	}
	path := fmt.Sprintf("locations/%d/product_entries/index_changed", locationServerID)
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, nil, err
	}

	for i := range out.ProductEntries {
		e, err := out.ProductEntries[i].toModel()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		updated = append(updated, e)
	}
	for i := range out.DeletedProductEntries {
		e, err := out.DeletedProductEntries[i].toModel()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		deleted = append(deleted, e)
	}
	return updated, deleted, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, e *models.ProductEntry, images []models.ArticleImage) (*models.ProductEntry, error) {
	return c.pushEntry(ctx, http.MethodPost, "product_entries", e, images)
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, e *models.ProductEntry, images []models.ArticleImage) (*models.ProductEntry, error) {
	return c.pushEntry(ctx, http.MethodPut, fmt.Sprintf("product_entries/%d", e.ServerID), e, images)
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, e *models.ProductEntry) (*models.ProductEntry, error) {
	var out struct {
		ProductEntry entryDTO `json:"product_entry"`
	}
	path := fmt.Sprintf("product_entries/%d", e.ServerID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, &out); err != nil {
		return nil, err
	}
	tombstone, err := out.ProductEntry.toModel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return tombstone, nil
}

func (c *HTTPClient) pushEntry(ctx context.Context, method, path string, e *models.ProductEntry, images []models.ArticleImage) (*models.ProductEntry, error) {
	dto := entryToDTO(e, images)
	if e.Location != nil {
		dto.LocationID = e.Location.ServerID
	}

	var out struct {
		ProductEntry entryDTO `json:"product_entry"`
	}
	if err := c.doJSON(ctx, method, path, nil, map[string]any{"product_entry": dto}, &out); err != nil {
		return nil, err
	}
	result, err := out.ProductEntry.toModel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, nil
}

// doJSON performs one round trip: marshal body, send, measure clock skew
// from the Date header, map the status code, decode into out. Any transport
// or decoding problem surfaces as ErrUnavailable so callers treat the
// operation as not having taken effect.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.updateSkew(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		return decodeValidationError(resp.Body)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	return nil
}

// updateSkew derives serverTime - localTime from the response's Date header.
// The value is kept process-wide (per client) and applied when the reconciler
// records its last-sync watermark.
func (c *HTTPClient) updateSkew(resp *http.Response) {
	dateHeader := resp.Header.Get("Date")
	if dateHeader == "" {
		return
	}
	serverTime, err := http.ParseTime(dateHeader)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.skew = time.Until(serverTime)
	c.mu.Unlock()
}

func decodeValidationError(r io.Reader) error {
	var payload struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil || len(payload.Errors) == 0 {
		return &ValidationError{}
	}
	return &ValidationError{Fields: payload.Errors}
}
