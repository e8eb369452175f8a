package cleanup_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudflare/cloudflare-go"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amora-app/media-pipeline/internal/media/cleanup"
	"github.com/amora-app/media-pipeline/internal/mocks"
)

func urls(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://cdn.example.com/media/chat/1/%d.webp", i)
	}
	return out
}

func successResponse() cloudflare.PurgeCacheResponse {
	return cloudflare.PurgeCacheResponse{Response: cloudflare.Response{Success: true}}
}

func TestCloudflarePurger_Batches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockCloudflareClient(ctrl)
	all := urls(65)

	var batches [][]string
	client.EXPECT().
		PurgeCache(gomock.Any(), "zone-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req cloudflare.PurgeCacheRequest) (cloudflare.PurgeCacheResponse, error) {
			batches = append(batches, req.Files)
			return successResponse(), nil
		}).
		Times(3)

	err := cleanup.NewCloudflarePurger(client, "zone-1").Purge(context.Background(), all)
	require.NoError(t, err)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 30)
	assert.Len(t, batches[1], 30)
	assert.Len(t, batches[2], 5)
	assert.Equal(t, all[60:], batches[2])
}

func TestCloudflarePurger_AttemptsEveryBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockCloudflareClient(ctrl)
	gomock.InOrder(
		client.EXPECT().PurgeCache(gomock.Any(), "zone-1", gomock.Any()).
			Return(cloudflare.PurgeCacheResponse{}, errors.New("rate limited")),
		client.EXPECT().PurgeCache(gomock.Any(), "zone-1", gomock.Any()).
			Return(cloudflare.PurgeCacheResponse{Response: cloudflare.Response{
				Success: false,
				Errors:  []cloudflare.ResponseInfo{{Code: 1012, Message: "request must contain files"}},
			}}, nil),
	)

	err := cleanup.NewCloudflarePurger(client, "zone-1").Purge(context.Background(), urls(31))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Contains(t, err.Error(), "1012: request must contain files")
}

func TestCloudflarePurger_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockCloudflareClient(ctrl)
	client.EXPECT().PurgeCache(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	assert.NoError(t, cleanup.NewCloudflarePurger(client, "zone-1").Purge(context.Background(), nil))
}
