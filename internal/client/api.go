package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"marketplace-api/internal/models"
)

// Endpoint helpers. Every method is a thin wrapper around Request: reads get
// the full cache treatment, mutations go straight to the network and then
// invalidate the endpoints they made stale.

// ListingFilters mirrors the query parameters of GET /api/listings.
type ListingFilters struct {
	Category string
	Type     string
	Search   string
	Limit    int
	Offset   int
}

// endpoint renders the filter set as a deterministic endpoint signature.
// url.Values.Encode sorts by key, so equal filters always produce the same
// cache key.
func (f ListingFilters) endpoint() string {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	endpoint := "/api/listings"
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}
	return endpoint
}

// ListingsResponse is the payload of GET /api/listings.
type ListingsResponse struct {
	Listings []models.Listing `json:"listings"`
	Count    int              `json:"count"`
	Total    int64            `json:"total"`
}

// ConversationsResponse is the payload of GET /api/conversations.
type ConversationsResponse struct {
	Conversations []models.Conversation `json:"conversations"`
	Count         int                   `json:"count"`
}

// MessagesResponse is the payload of GET /api/conversations/:id/messages.
type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
	Count    int              `json:"count"`
}

// FavoritesResponse is the payload of GET /api/favorites.
type FavoritesResponse struct {
	Listings []models.Listing `json:"listings"`
	Count    int              `json:"count"`
}

// AuthResponse is the payload of POST /api/login and /api/register.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	data, err := c.Request(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Listings fetches a filtered listings page.
func (c *Client) Listings(ctx context.Context, f ListingFilters) (*ListingsResponse, error) {
	var resp ListingsResponse
	if err := c.getJSON(ctx, f.endpoint(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Listing fetches one listing by id.
func (c *Client) Listing(ctx context.Context, id string) (*models.Listing, error) {
	var resp models.Listing
	if err := c.getJSON(ctx, "/api/listings/"+id, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MyListings fetches the authenticated user's own listings.
func (c *Client) MyListings(ctx context.Context) (*ListingsResponse, error) {
	var resp ListingsResponse
	if err := c.getJSON(ctx, "/api/my-listings", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateListing creates a listing and invalidates cached listing reads.
func (c *Client) CreateListing(ctx context.Context, body any) (*models.Listing, error) {
	data, err := c.Request(ctx, "/api/listings", &RequestOptions{Method: http.MethodPost, Body: body})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/api/listings")
	c.Invalidate("/api/my-listings")
	var resp models.Listing
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateListing updates a listing and invalidates cached listing reads.
func (c *Client) UpdateListing(ctx context.Context, id string, body any) (*models.Listing, error) {
	data, err := c.Request(ctx, "/api/listings/"+id, &RequestOptions{Method: http.MethodPut, Body: body})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/api/listings")
	c.Invalidate("/api/my-listings")
	var resp models.Listing
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteListing deletes a listing and invalidates cached listing reads.
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/api/listings/"+id, &RequestOptions{Method: http.MethodDelete})
	if err != nil {
		return err
	}
	c.Invalidate("/api/listings")
	c.Invalidate("/api/my-listings")
	return nil
}

// Conversations fetches the authenticated user's conversation list.
func (c *Client) Conversations(ctx context.Context) (*ConversationsResponse, error) {
	var resp ConversationsResponse
	if err := c.getJSON(ctx, "/api/conversations", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Messages fetches one conversation's messages.
func (c *Client) Messages(ctx context.Context, conversationID string) (*MessagesResponse, error) {
	var resp MessagesResponse
	if err := c.getJSON(ctx, "/api/conversations/"+conversationID+"/messages", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage posts a message and invalidates the cached message list and
// conversation list.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (*models.Message, error) {
	data, err := c.Request(ctx, "/api/conversations/"+conversationID+"/messages",
		&RequestOptions{Method: http.MethodPost, Body: map[string]string{"content": content}})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/api/conversations")
	var resp models.Message
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateConversation starts a conversation about a listing.
func (c *Client) CreateConversation(ctx context.Context, listingID string) (*models.Conversation, error) {
	data, err := c.Request(ctx, "/api/conversations",
		&RequestOptions{Method: http.MethodPost, Body: map[string]string{"listingId": listingID}})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/api/conversations")
	var resp models.Conversation
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Favorites fetches the authenticated user's favorite listings.
func (c *Client) Favorites(ctx context.Context) (*FavoritesResponse, error) {
	var resp FavoritesResponse
	if err := c.getJSON(ctx, "/api/favorites", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddFavorite bookmarks a listing.
func (c *Client) AddFavorite(ctx context.Context, listingID string) error {
	_, err := c.Request(ctx, "/api/favorites/"+listingID, &RequestOptions{Method: http.MethodPost})
	if err != nil {
		return err
	}
	c.Invalidate("/api/favorites")
	return nil
}

// RemoveFavorite removes a bookmark.
func (c *Client) RemoveFavorite(ctx context.Context, listingID string) error {
	_, err := c.Request(ctx, "/api/favorites/"+listingID, &RequestOptions{Method: http.MethodDelete})
	if err != nil {
		return err
	}
	c.Invalidate("/api/favorites")
	return nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var resp models.User
	if err := c.getJSON(ctx, "/api/profile", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, body any) (*models.User, error) {
	data, err := c.Request(ctx, "/api/profile", &RequestOptions{Method: http.MethodPut, Body: body})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/api/profile")
	var resp models.User
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	data, err := c.Request(ctx, "/api/register", &RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"username": username, "email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}
	var resp AuthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	data, err := c.Request(ctx, "/api/login", &RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"username": username, "password": password},
	})
	if err != nil {
		return nil, err
	}
	var resp AuthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}
