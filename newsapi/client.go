// Package newsapi fetches raw market news articles. It is an external
// collaborator of the ingestion core: fetching, retries, and timeouts live
// here, and a record delivered after a retry is indistinguishable from one
// delivered first try.
package newsapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Article is one unscored article as the API delivers it.
type Article struct {
	Source      string
	Title       string
	Description string
	URL         string
	PublishedAt time.Time
}

type searchResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

type Client struct {
	apiKey string
	client *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(2)

	return &Client{
		apiKey: apiKey,
		client: client,
	}
}

// FetchArticles returns recent articles mentioning the given symbol.
func (c *Client) FetchArticles(ctx context.Context, symbol string) ([]Article, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        symbol,
			"sortBy":   "publishedAt",
			"pageSize": "25",
			"apiKey":   c.apiKey,
		}).
		SetResult(&searchResponse{}).
		Get("/everything")
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch news for %s: status %s", symbol, resp.Status())
	}

	result := resp.Result().(*searchResponse)
	articles := make([]Article, 0, len(result.Articles))
	for _, a := range result.Articles {
		articles = append(articles, Article{
			Source:      a.Source.Name,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
