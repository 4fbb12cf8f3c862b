package market

import (
	"context"
	"time"

	"github.com/valshi/whaletracker/internal/api"
	"github.com/valshi/whaletracker/internal/model"
)

// APIFetcher resolves metadata via the REST API: market for the title, then
// event and series for the tag set. Tag lookups are best-effort; a market
// with a title but no tags is still useful.
type APIFetcher struct {
	client *api.Client
}

// NewAPIFetcher creates a fetcher backed by a REST client.
func NewAPIFetcher(client *api.Client) *APIFetcher {
	return &APIFetcher{client: client}
}

// FetchMetadata implements Fetcher.
func (f *APIFetcher) FetchMetadata(ctx context.Context, ticker string) (model.MarketMetadata, error) {
	mkt, err := f.client.GetMarket(ctx, ticker)
	if err != nil {
		return model.MarketMetadata{}, err
	}

	return mkt.Metadata(f.fetchTags(ctx, mkt.EventTicker), time.Now().UnixMilli()), nil
}

func (f *APIFetcher) fetchTags(ctx context.Context, eventTicker string) []string {
	if eventTicker == "" {
		return nil
	}

	event, err := f.client.GetEvent(ctx, eventTicker)
	if err != nil {
		return nil
	}

	var tags []string
	if event.SeriesTicker != "" {
		if series, err := f.client.GetSeries(ctx, event.SeriesTicker); err == nil {
			tags = series.Tags
		}
	}

	// The event category backs the tag set when the series carries none.
	if len(tags) == 0 && event.Category != "" {
		tags = []string{event.Category}
	}

	return tags
}
