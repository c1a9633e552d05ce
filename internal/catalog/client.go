// Package catalog is a small client for the RAWG game database used to
// find games to place into categories. Every response is treated as
// untrusted input.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meur/gameshelf/internal/models"
)

// DefaultBaseURL is the public RAWG API endpoint
const DefaultBaseURL = "https://api.rawg.io/api"

// DefaultPageSize is used when a search does not ask for a page size
const DefaultPageSize = 10

// ErrUnavailable wraps every failure talking to the catalog
var ErrUnavailable = errors.New("catalog unavailable")

// Game is a catalog record
type Game struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Image       string            `json:"background_image"`
	Genres      models.StringList `json:"genres"`
	Released    string            `json:"released"`
	Platforms   models.StringList `json:"platforms"`
	Description string            `json:"description_raw,omitempty"`
	Website     string            `json:"website,omitempty"`
	Rating      float64           `json:"rating,omitempty"`
}

// Entry converts the record into a category entry
func (g Game) Entry() models.GameEntry {
	return models.GameEntry{
		ID:        g.ID,
		Name:      g.Name,
		Image:     g.Image,
		Genres:    append(models.StringList(nil), g.Genres...),
		Released:  g.Released,
		Platforms: append(models.StringList(nil), g.Platforms...),
	}
}

// Store is a storefront link for a game
type Store struct {
	ID      int64  `json:"id"`
	StoreID int64  `json:"store_id"`
	URL     string `json:"url"`
}

type page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// Client talks to the RAWG API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a catalog client. An empty baseURL selects the public
// endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Search returns games matching query
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]Game, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	params := url.Values{}
	params.Set("search", query)
	params.Set("page_size", strconv.Itoa(pageSize))

	var res page[Game]
	if err := c.get(ctx, "/games", params, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

// Game fetches the details of one game
func (c *Client) Game(ctx context.Context, id int64) (Game, error) {
	var g Game
	if err := c.get(ctx, "/games/"+strconv.FormatInt(id, 10), nil, &g); err != nil {
		return Game{}, err
	}
	return g, nil
}

// Stores lists the storefront links of one game
func (c *Client) Stores(ctx context.Context, id int64) ([]Store, error) {
	var res page[Store]
	if err := c.get(ctx, "/games/"+strconv.FormatInt(id, 10)+"/stores", nil, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}

// Close releases idle connections
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned status %d: %s", ErrUnavailable, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return nil
}
