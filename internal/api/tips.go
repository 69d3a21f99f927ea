package api

import (
	"context"
	"fmt"

	"github.com/tubetip/tubetip/internal/model"
)

// tipsResponse wraps the backend's tip page envelope.
type tipsResponse struct {
	Tips []model.Tip `json:"tips"`
}

// Tips fetches one page of a profile's tips, most recent first.
//
// Pagination is plain limit/offset. The backend gives no total count here
// and no "has more" flag — a short page is the only exhaustion signal, and
// interpreting it is the feed's job, not this client's.
func (c *Client) Tips(ctx context.Context, profileID int64, limit, offset int) ([]model.Tip, error) {
	path := fmt.Sprintf("/tips/%d?limit=%d&offset=%d", profileID, limit, offset)

	var res tipsResponse
	if err := c.getJSON(ctx, path, TokenPair{}, &res, "tips"); err != nil {
		return nil, err
	}
	return res.Tips, nil
}
