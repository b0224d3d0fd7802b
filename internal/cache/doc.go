// Package cache keeps yt-dlp results on disk so that repeated submissions of
// the same URL do not spawn the tool again.
//
// A Store is a single JSON file of entries keyed by URL. Each entry holds
// whatever is known about that URL (metadata, formats, playlist entries) and
// expires as a whole after the store's TTL:
//
//	store, err := cache.Open(settings.CachePath, settings.CacheTTL())
//	catalog := cache.NewCatalog(ytdlp.NewCatalog(runner, bin), store)
//
// Catalog, Resolver and Metadata wrap the corresponding ytdlp types and only
// cache successful results; errors always reach the caller uncached.
package cache
