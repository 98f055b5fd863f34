package polygon

import (
	"context"
	"encoding/json"
	"fmt"
)

type page struct {
	Results json.RawMessage `json:"results"`
	NextURL string          `json:"next_url"`
}

// MergedResponse is what GetAll returns: every page's results in one array.
type MergedResponse struct {
	Status  string            `json:"status"`
	Count   int               `json:"count"`
	Pages   int               `json:"pages"`
	Results []json.RawMessage `json:"results"`
}

// GetAll follows next_url links starting at path and merges the results
// arrays of every page. maxPages <= 0 means no limit.
func (c *Client) GetAll(ctx context.Context, path string, query map[string]string, maxPages int) (json.RawMessage, error) {
	merged := MergedResponse{Status: "OK", Results: []json.RawMessage{}}

	next := path
	for next != "" {
		if maxPages > 0 && merged.Pages >= maxPages {
			c.logger.Debug("Stopping pagination at page limit", "pages", merged.Pages)
			break
		}

		body, err := c.Get(ctx, next, query)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", merged.Pages+1, err)
		}
		merged.Pages++

		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("page %d: failed to decode: %w", merged.Pages, err)
		}
		if len(p.Results) > 0 && p.Results[0] == '[' {
			var items []json.RawMessage
			if err := json.Unmarshal(p.Results, &items); err != nil {
				return nil, fmt.Errorf("page %d: failed to decode results: %w", merged.Pages, err)
			}
			merged.Results = append(merged.Results, items...)
		} else if len(p.Results) > 0 && string(p.Results) != "null" {
			merged.Results = append(merged.Results, p.Results)
		}

		// next_url already carries the cursor and original filters.
		next, query = p.NextURL, nil
	}

	merged.Count = len(merged.Results)
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged response: %w", err)
	}
	return out, nil
}
