// Package chart builds chart-image URLs for activity stats. The hosted
// chart service renders the image; this layer only constructs the URL.
package chart

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// DefaultEndpoint is the hosted chart renderer.
const DefaultEndpoint = "https://quickchart.io/chart"

// Builder constructs chart URLs against one renderer endpoint.
type Builder struct {
	endpoint string
}

// NewBuilder creates a builder; an empty endpoint uses DefaultEndpoint.
func NewBuilder(endpoint string) *Builder {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Builder{endpoint: endpoint}
}

type chartConfig struct {
	Type string    `json:"type"`
	Data chartData `json:"data"`
}

type chartData struct {
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

type chartDataset struct {
	Label string  `json:"label"`
	Data  []int64 `json:"data"`
}

// ActivityURL builds a bar-chart URL of per-user message counts for a day.
func (b *Builder) ActivityURL(stats *domain.ActivityStats) (string, error) {
	users := make([]string, 0, len(stats.PerUser))
	for user := range stats.PerUser {
		users = append(users, string(user))
	}
	sort.Strings(users)

	counts := make([]int64, len(users))
	for i, user := range users {
		counts[i] = stats.PerUser[domain.UserID(user)]
	}

	cfg := chartConfig{
		Type: "bar",
		Data: chartData{
			Labels: users,
			Datasets: []chartDataset{
				{Label: fmt.Sprintf("Messages on %s", stats.Date), Data: counts},
			},
		},
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode chart config: %w", err)
	}

	params := url.Values{}
	params.Set("c", string(raw))
	return b.endpoint + "?" + params.Encode(), nil
}
