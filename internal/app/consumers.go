package app

import (
	"encoding/json"
	"fmt"

	"crash-platform/internal/audit"
	"crash-platform/internal/cache"
	"crash-platform/internal/event"
	"crash-platform/internal/game"
	"crash-platform/internal/referral"
	"crash-platform/internal/ws"
)

// RegisterConsumers fans game and ledger events out to the live feed, the
// snapshot cache and the audit trail.
func RegisterConsumers(bus *event.Bus, hub *ws.Hub, auditService *audit.Service) {

	feed := func(kind string) event.Handler {
		return func(payload interface{}) {
			hub.BroadcastJSON(kind, payload)
		}
	}

	bus.Subscribe(event.EventRoundStarted, feed(event.EventRoundStarted))
	bus.Subscribe(event.EventRoundTick, feed(event.EventRoundTick))
	bus.Subscribe(event.EventRoundCrashed, feed(event.EventRoundCrashed))
	bus.Subscribe(event.EventBetPlaced, feed(event.EventBetPlaced))
	bus.Subscribe(event.EventBetCashedOut, feed(event.EventBetCashedOut))

	cacheSnapshot := func(payload interface{}) {
		snap, ok := payload.(game.Snapshot)
		if !ok {
			return
		}
		data, err := json.Marshal(snap)
		if err != nil {
			return
		}
		cache.SetSnapshot(string(data))
	}
	bus.Subscribe(event.EventRoundStarted, cacheSnapshot)
	bus.Subscribe(event.EventRoundTick, cacheSnapshot)

	bus.Subscribe(event.EventReferralPaid, func(payload interface{}) {
		link, ok := payload.(*referral.Link)
		if !ok {
			return
		}
		auditService.Log(link.ReferrerID, "referral_paid",
			fmt.Sprintf("link:%s bonus:%.2f", link.ID, link.BonusAmount))
	})
}
