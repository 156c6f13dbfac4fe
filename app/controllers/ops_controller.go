package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/metrics/counter"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/payments"
)

const opsListLimit = 200

// OpsController exposes operational read endpoints: stuck reconciliations
// and webhook outcome counters. Detecting a paid invoice whose project never
// advanced happens here, not in the webhook path.
type OpsController struct {
	svc *payments.Service
}

func NewOpsController(svc *payments.Service) *OpsController {
	return &OpsController{svc: svc}
}

// HandleListReconciliations lists every reconciliation that has not completed.
func (oc *OpsController) HandleListReconciliations(c *fiber.Ctx) error {
	recs, err := oc.svc.IncompleteReconciliations(opsListLimit)
	if err != nil {
		log.Errorf("[Ops] Failed to list reconciliations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_list_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":           len(recs),
		"reconciliations": recs,
	})
}

// HandleWebhookStats returns webhook outcome counters.
func (oc *OpsController) HandleWebhookStats(c *fiber.Ctx) error {
	stats, err := counter.WebhookStats()
	if err != nil {
		log.Errorf("[Ops] Failed to read webhook stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_stats_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"stats": stats})
}
