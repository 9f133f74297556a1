// Package api exposes the document pipeline over a local REST API.
// It drives the same core services as the CLI and is started with
// 'finsight serve'.
package api

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("api: query service is required")
