package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// reconcileQueuedKeyPrefix guards against piling up duplicate re-drive jobs
// for the same invoice while one is still in flight.
const reconcileQueuedKeyPrefix = "reconcile:queued:"
const reconcileQueuedTTL = 10 * time.Minute

// processReconcileInvoiceJob resumes an incomplete B2B reconciliation from
// its recorded state.
func (q *Queue) processReconcileInvoiceJob(ctx context.Context, job *Job) error {
	payload, err := ReconcileInvoiceJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid reconcile invoice payload: %w", err)
	}
	if payload.InvoiceID == "" {
		return fmt.Errorf("reconcile invoice payload has no invoice_id")
	}

	defer func() {
		_ = q.client.Del(ctx, reconcileQueuedKeyPrefix+payload.InvoiceID).Err()
	}()

	if err := q.svc.DriveReconciliation(ctx, payload.InvoiceID); err != nil {
		return fmt.Errorf("re-drive reconciliation for %s: %w", payload.InvoiceID, err)
	}
	return nil
}

// reaper periodically scans for reconciliations that are due for a re-drive
// and enqueues one job per invoice.
func (q *Queue) reaper(interval time.Duration) {
	defer q.wg.Done()
	log.Infof("[JobQueue] Reconciliation reaper running (interval=%s)", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ctx := context.Background()
	for {
		select {
		case <-q.stopCh:
			log.Info("[JobQueue] Reconciliation reaper stopping")
			return
		case <-ticker.C:
			recs, err := q.svc.DueReconciliations(50)
			if err != nil {
				log.Errorf("[JobQueue] Reaper failed to list due reconciliations: %v", err)
				continue
			}
			for _, rec := range recs {
				queuedKey := reconcileQueuedKeyPrefix + rec.InvoiceID
				ok, err := q.client.SetNX(ctx, queuedKey, "1", reconcileQueuedTTL).Result()
				if err != nil {
					log.Errorf("[JobQueue] Reaper SetNX error for %s: %v", rec.InvoiceID, err)
					continue
				}
				if !ok {
					// Already queued or in flight
					continue
				}
				payload := ReconcileInvoiceJobPayload{InvoiceID: rec.InvoiceID}
				if _, err := q.EnqueueJob(JobTypeReconcileInvoice, payload.ToMap()); err != nil {
					log.Errorf("[JobQueue] Reaper failed to enqueue re-drive for %s: %v", rec.InvoiceID, err)
					_ = q.client.Del(ctx, queuedKey).Err()
					continue
				}
				log.Infof("[JobQueue] Re-driving reconciliation for invoice %s (state=%s, attempt=%d)", rec.InvoiceID, rec.State, rec.AttemptCount)
			}
		}
	}
}
