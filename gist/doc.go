// Package gist provides a minimal client for the GitHub Gists API, used to
// host GeoJSON that is too large to embed in a viewer URL.
//
//	c := gist.New(gist.WithToken(os.Getenv("GITHUB_TOKEN")))
//
//	id, err := c.Create(ctx, "data.geojson", "", contents)
//	files, err := c.Get(ctx, id)
//
// Client satisfies geojsonio.RemoteStore.
//
// # Error Handling
//
//	if gist.IsRateLimited(err) {
//		// Wait for the rate limit window to reset
//	}
//	if gist.IsUnauthorized(err) {
//		// Token missing or without the gist scope
//	}
package gist
