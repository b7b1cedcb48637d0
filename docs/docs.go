// Package docs contiene la especificación OpenAPI de la API.
package docs

import _ "embed"

// SwaggerJSON especificación Swagger 2.0 de las rutas /api, /health y /metrics.
//
//go:embed swagger.json
var SwaggerJSON []byte
