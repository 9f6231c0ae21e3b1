package account

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app fiber.Router, service *Service) {

	app.Post("/account", func(c *fiber.Ctx) error {
		type Req struct {
			Username     string `json:"username"`
			ReferralCode string `json:"referral_code"`
		}
		var r Req
		c.BodyParser(&r)
		if r.Username == "" {
			return c.Status(400).JSON(fiber.Map{"error": "username required"})
		}
		a, err := service.Create(r.Username, r.ReferralCode)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(a)
	})

	app.Get("/account/:uid", func(c *fiber.Ctx) error {
		uid, _ := c.ParamsInt("uid")
		a, err := service.Get(int64(uid))
		if err != nil {
			if errors.Is(err, ErrUnknownAccount) {
				return c.Status(404).JSON(fiber.Map{"error": "not found"})
			}
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(a)
	})
}
