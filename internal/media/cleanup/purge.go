package cleanup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/cloudflare-go"

	"github.com/amora-app/media-pipeline/internal/adapter"
)

// maxPurgeFiles is the number of URLs Cloudflare accepts per purge request
const maxPurgeFiles = 30

// Purger evicts public URLs from an edge cache
//
//go:generate mockgen -source=purge.go -destination=../../mocks/purger.go -package=mocks -mock_names=Purger=MockPurger
type Purger interface {
	Purge(ctx context.Context, urls []string) error
}

type cloudflarePurger struct {
	client adapter.CloudflareClient
	zoneID string
}

// NewCloudflarePurger creates a Purger for one Cloudflare zone
func NewCloudflarePurger(client adapter.CloudflareClient, zoneID string) Purger {
	return &cloudflarePurger{client: client, zoneID: zoneID}
}

// Purge sends urls in batches; every batch is attempted and failures are joined
func (p *cloudflarePurger) Purge(ctx context.Context, urls []string) error {
	var errs []error
	for start := 0; start < len(urls); start += maxPurgeFiles {
		batch := urls[start:min(start+maxPurgeFiles, len(urls))]

		resp, err := p.client.PurgeCache(ctx, p.zoneID, cloudflare.PurgeCacheRequest{Files: batch})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to purge %d urls: %w", len(batch), err))
			continue
		}
		if !resp.Success {
			errs = append(errs, fmt.Errorf("purge rejected: %s", responseErrors(resp.Errors)))
		}
	}
	return errors.Join(errs...)
}

func responseErrors(items []cloudflare.ResponseInfo) string {
	if len(items) == 0 {
		return "unknown error"
	}
	messages := make([]string, 0, len(items))
	for _, item := range items {
		messages = append(messages, fmt.Sprintf("%d: %s", item.Code, item.Message))
	}
	return strings.Join(messages, "; ")
}
