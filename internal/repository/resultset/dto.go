package resultset

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/relevancy/internal/domain"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
)

// setRow is the stored JSON form of a result set.
type setRow struct {
	SearchID string         `json:"search_id"`
	Provider string         `json:"provider"`
	Rank     int            `json:"rank"`
	SavedAt  int64          `json:"saved_at"`
	Results  []domrs.Result `json:"results"`
}

func setToJSON(set domrs.Set, now time.Time) ([]byte, error) {
	data, err := json.Marshal(setRow{
		SearchID: set.SearchID,
		Provider: set.Provider,
		Rank:     set.Rank,
		SavedAt:  now.UnixMilli(),
		Results:  set.Results,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal result set: %w", err)
	}
	return data, nil
}

func setFromJSON(data []byte) (domrs.Set, error) {
	var row setRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domrs.Set{}, fmt.Errorf("%w: %w", domain.ErrInvalidResultSet, err)
	}
	if row.Results == nil {
		row.Results = []domrs.Result{}
	}
	return domrs.Set{
		SearchID: row.SearchID,
		Provider: row.Provider,
		Rank:     row.Rank,
		Results:  row.Results,
	}, nil
}

func resultsKey(searchID, provider string) string {
	return domain.KeyPrefix + "results:" + searchID + ":" + provider
}

func searchKey(searchID string) string {
	return domain.KeyPrefix + "search:" + searchID
}
