// Package geojsonio builds URLs that open GeoJSON in the geojson.io viewer.
//
// # Quick Start
//
//	b := geojsonio.New(geojsonio.WithStore(gist.New(gist.WithToken(token))))
//
//	u, err := b.BuildReference(ctx, `{"type":"Point","coordinates":[1,2]}`, geojsonio.BuildOptions{})
//	// http://geojson.io/#data=data:application/json,%7B%22type%22...
//
// Payloads up to InlineLimit bytes are embedded in the URL fragment. Larger
// payloads up to RemoteLimit bytes are uploaded to the configured RemoteStore
// and the URL carries only the gist id:
//
//	http://geojson.io/#id=gist:/<id>
//
// # Opening a Browser
//
//	b := geojsonio.New(geojsonio.WithOpener(browser.Open))
//	u, err := b.Open(ctx, contents, geojsonio.BuildOptions{})
//
// # Error Handling
//
//	_, err := b.BuildReference(ctx, contents, geojsonio.BuildOptions{DisableRemoteStore: true})
//	if geojsonio.IsOversize(err) {
//		// Too large for a URL and gists are disabled
//	}
//	if geojsonio.IsStoreUnavailable(err) {
//		// No store configured
//	}
package geojsonio
