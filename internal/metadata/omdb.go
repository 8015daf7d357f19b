// Package metadata enriches catalog items with external ratings.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultOMDbURL = "https://www.omdbapi.com/"

// Ratings holds the scores fetched from the OMDb API.
type Ratings struct {
	IMDBRating *float64 // e.g. 7.8
	RTScore    *int     // Rotten Tomatoes critic % (0-100)
	IMDBID     *string  // e.g. tt0111161
}

type OMDbClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewOMDbClient(baseURL, apiKey string) *OMDbClient {
	if baseURL == "" {
		baseURL = DefaultOMDbURL
	}
	return &OMDbClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchByTitle looks an item up by title, and year when known. OMDb
// title search is fuzzy; the year narrows remakes down to the right
// release.
func (c *OMDbClient) FetchByTitle(ctx context.Context, title string, year *int) (*Ratings, error) {
	if title == "" || c.apiKey == "" {
		return nil, fmt.Errorf("title and api key are required")
	}

	q := url.Values{}
	q.Set("t", title)
	q.Set("apikey", c.apiKey)
	if year != nil {
		q.Set("y", fmt.Sprintf("%d", *year))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var omdb struct {
		Response   string `json:"Response"`
		Error      string `json:"Error"`
		IMDBRating string `json:"imdbRating"`
		IMDBID     string `json:"imdbID"`
		Ratings    []struct {
			Source string `json:"Source"`
			Value  string `json:"Value"`
		} `json:"Ratings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&omdb); err != nil {
		return nil, err
	}
	if omdb.Response == "False" {
		return nil, fmt.Errorf("omdb: %s", omdb.Error)
	}

	result := &Ratings{}

	if omdb.IMDBRating != "" && omdb.IMDBRating != "N/A" {
		var r float64
		fmt.Sscanf(omdb.IMDBRating, "%f", &r)
		result.IMDBRating = &r
	}
	if omdb.IMDBID != "" && omdb.IMDBID != "N/A" {
		id := omdb.IMDBID
		result.IMDBID = &id
	}
	for _, rating := range omdb.Ratings {
		// Value is like "92%".
		if rating.Source == "Rotten Tomatoes" {
			var pct int
			fmt.Sscanf(rating.Value, "%d%%", &pct)
			result.RTScore = &pct
		}
	}

	return result, nil
}
