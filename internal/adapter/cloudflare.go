package adapter

import (
	"context"

	"github.com/cloudflare/cloudflare-go"
)

// CloudflareClient defines an interface for the Cloudflare cache API to enable mocking
//
//go:generate mockgen -source=cloudflare.go -destination=../mocks/cloudflare.go -package=mocks -mock_names=CloudflareClient=MockCloudflareClient
type CloudflareClient interface {
	// PurgeCache evicts the given files from the zone's edge cache
	PurgeCache(ctx context.Context, zoneID string, params cloudflare.PurgeCacheRequest) (cloudflare.PurgeCacheResponse, error)
}

// RealCloudflareClient implements CloudflareClient using the official Cloudflare SDK
type RealCloudflareClient struct {
	api *cloudflare.API
}

// NewCloudflareClient creates a new real Cloudflare client
func NewCloudflareClient(apiToken string) (CloudflareClient, error) {
	api, err := cloudflare.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, err
	}
	return &RealCloudflareClient{
		api: api,
	}, nil
}

// PurgeCache evicts the given files from the zone's edge cache
func (c *RealCloudflareClient) PurgeCache(ctx context.Context, zoneID string, params cloudflare.PurgeCacheRequest) (cloudflare.PurgeCacheResponse, error) {
	return c.api.PurgeCache(ctx, zoneID, params)
}
