// Package items implements the gallery item lifecycle: the persistence
// adapters, the service facade the transport layer depends on, and the
// record model itself.
package items

import (
	"context"
	"sort"
)

// Repository is the three-operation storage capability behind the service
// facade, plus a reachability probe for the health endpoint. Implementations
// must return shared.ErrorNotFound from Delete when the id is unknown and
// must keep List ordered by CreatedAt descending.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, req CreateItemRequest) (*Item, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// sortNewestFirst orders items by CreatedAt descending. CreatedAt values are
// RFC3339 UTC strings, so lexicographic order matches chronological order.
func sortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
}
