package http

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ahorro-api/internal/application/dto"
)

var validate = validator.New()

// bindBody decodifica el cuerpo JSON y aplica las etiquetas validate.
// Si falla, ya respondió 400 y devuelve false.
func bindBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return checkStruct(c, out)
}

func checkStruct(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return true, nil
}

// validationMessage resume los campos inválidos como "campo:regla" ordenados.
func validationMessage(err error) string {
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	fields := make([]string, 0, len(ves))
	for _, ve := range ves {
		fields = append(fields, fmt.Sprintf("%s:%s", ve.Field(), ve.Tag()))
	}
	sort.Strings(fields)
	return "datos inválidos: " + strings.Join(fields, ", ")
}
