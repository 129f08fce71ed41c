// Package groupby buckets slices by a derived key.
package groupby

// By applies f to each item and collects the items under the returned key.  Items keep their
// input order within each group.  A nil or empty input yields an empty, non-nil map.
func By[K comparable, V any](f func(V) K, items []V) map[K][]V {
	groups := make(map[K][]V)
	for _, item := range items {
		k := f(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}
