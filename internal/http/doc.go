// Package http provides the fetch primitive used to read manifests and item
// files.
//
// This package handles:
//   - "No cache" semantics on every request, since items change between loads
//   - Connection pooling sized for the loader's concurrency
//   - Retry with exponential backoff on 5xx responses and transport errors
//   - A cap on response body size
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	body, err := client.Get(ctx, url)
//	var se *http.StatusError
//	if errors.As(err, &se) {
//	    // se.Code holds the HTTP status
//	}
//	defer body.Close()
package http
