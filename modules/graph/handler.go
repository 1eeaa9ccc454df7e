package graph

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// Handler serves POST /graphql. Task errors are reported inside the GraphQL
// response with status 200; only an unreadable body is a 400.
func (s *Schema) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req Request
		if err := json.Unmarshal(c.Body(), &req); err != nil || req.Query == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": []fiber.Map{{
					"message":    "request body must be a JSON object with a query",
					"extensions": fiber.Map{"code": CodeBadUserInput},
				}},
			})
		}
		return c.JSON(s.Execute(c.UserContext(), req))
	}
}
