package referral

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app fiber.Router, service *Service) {

	app.Get("/referrals/:uid", func(c *fiber.Ctx) error {
		uid, _ := c.ParamsInt("uid")
		links, err := service.Status(int64(uid))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(links)
	})
}
