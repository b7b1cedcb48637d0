package http

import (
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
)

// SwaggerDocs sirve la UI en /docs y la especificación en /docs/swagger.json.
// spec se lee desde memoria, no depende del directorio de trabajo.
func SwaggerDocs(spec []byte, title string) fiber.Handler {
	return swagger.New(swagger.Config{
		BasePath:    "/",
		FilePath:    "./docs/swagger.json",
		FileContent: spec,
		Path:        "docs",
		Title:       title,
	})
}
