package wallet

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app fiber.Router, service *Service) {

	app.Post("/wallet/deposit", func(c *fiber.Ctx) error {
		type Req struct {
			UID        int64   `json:"uid"`
			Amount     float64 `json:"amount"`
			PaymentRef string  `json:"payment_ref"`
		}
		var r Req
		c.BodyParser(&r)
		t, err := service.RequestDeposit(r.UID, r.Amount, r.PaymentRef)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(t)
	})

	app.Post("/wallet/withdraw", func(c *fiber.Ctx) error {
		type Req struct {
			UID        int64   `json:"uid"`
			Amount     float64 `json:"amount"`
			PaymentRef string  `json:"payment_ref"`
		}
		var r Req
		c.BodyParser(&r)
		t, err := service.RequestWithdrawal(r.UID, r.Amount, r.PaymentRef)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(t)
	})

	app.Get("/wallet/transactions/:uid", func(c *fiber.Ctx) error {
		uid, _ := c.ParamsInt("uid")
		limit := c.QueryInt("limit", 50)
		txs, err := service.Transactions(int64(uid), limit)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(txs)
	})
}

func RegisterAdminRoutes(app fiber.Router, service *Service) {

	app.Get("/wallet/pending", func(c *fiber.Ctx) error {
		txs, err := service.Pending()
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(txs)
	})

	app.Post("/wallet/approve/:id", func(c *fiber.Ctx) error {
		t, err := service.Approve(c.Params("id"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(t)
	})

	app.Post("/wallet/reject/:id", func(c *fiber.Ctx) error {
		t, err := service.Reject(c.Params("id"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(t)
	})
}
