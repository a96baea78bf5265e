package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"nextchamp/app/internal/domain"
)

// ChatHistory fetches a user's assistant conversation in chronological
// order. A user with no history yet yields an empty slice, not an error;
// the backend reports that case as 404.
func (c *Client) ChatHistory(ctx context.Context, userID string) ([]domain.ChatEntry, error) {
	var entries []domain.ChatEntry
	err := c.doJSON(ctx, http.MethodGet, "/bot/history/"+url.PathEscape(userID), nil, &entries)
	if err != nil {
		var serr *StatusError
		if errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// AppendChat records one question or answer line in the user's history.
func (c *Client) AppendChat(ctx context.Context, userID string, entry domain.ChatEntry) error {
	body := map[string]string{
		"user_id":   userID,
		"type":      entry.Type,
		"statement": entry.Statement,
	}
	return c.doJSON(ctx, http.MethodPut, "/bot/update", body, nil)
}
