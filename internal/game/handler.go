package game

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"crash-platform/internal/account"
)

func RegisterRoutes(r fiber.Router, s *Scheduler, board *Leaderboard) {

	r.Post("/game/bet", func(c *fiber.Ctx) error {
		type Req struct {
			UID    int64   `json:"uid"`
			Amount float64 `json:"amount"`
		}
		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}

		bet, err := s.PlaceBet(body.UID, body.Amount)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(bet)
	})

	r.Post("/game/cashout", func(c *fiber.Ctx) error {
		type Req struct {
			UID int64 `json:"uid"`
		}
		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}

		bet, err := s.CashOut(body.UID)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(bet)
	})

	r.Get("/game/state", func(c *fiber.Ctx) error {
		return c.JSON(s.Snapshot())
	})

	r.Get("/game/bets", func(c *fiber.Ctx) error {
		return c.JSON(s.ActiveBets())
	})

	r.Get("/game/history", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", historySize)
		return c.JSON(s.History(limit))
	})

	r.Get("/game/leaderboard", func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 10)
		return c.JSON(board.Top(n))
	})
}

func statusFor(err error) int {
	if errors.Is(err, account.ErrUnknownAccount) {
		return 404
	}
	return 400
}
