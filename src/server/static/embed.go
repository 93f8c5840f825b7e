// Package static embeds the API description served at /api/v1/openapi.json.
package static

import _ "embed"

//go:embed openapi.json
var OpenAPI []byte
