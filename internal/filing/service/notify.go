package service

import (
	"context"

	"efile/internal/filing/document"
	"efile/internal/filing/models"
	"efile/internal/notify"
	"efile/pkg/email"
)

// notifyFiled tells the entity's filers that a filing was received. It runs
// after commit in the background; failures are logged and counted only.
func (s *Service) notifyFiled(ctx context.Context, f *models.Filing, summary *document.FeeSummary) {
	if s.notifier == nil {
		return
	}
	filers, err := s.entities.FilersForEntity(ctx, f.EntityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load notification recipients", "filing_id", f.ID, "error", err)
		s.countNotificationFailure()
		return
	}
	addrs := make([]string, 0, len(filers))
	for _, filer := range filers {
		addrs = append(addrs, filer.Email)
	}
	recipients := email.Recipients(addrs...)
	if len(recipients) == 0 {
		s.logger.DebugContext(ctx, "no notification recipients", "filing_id", f.ID)
		return
	}

	data := map[string]any{
		"filing_id":        f.ID.String(),
		"filing_type":      f.Type.String(),
		"description":      f.Type.Description(),
		"entity_id":        f.EntityID.String(),
		"year":             f.Year,
		"filing_date":      f.FilingDate.String(),
		"amendment":        f.Amendment,
		"amendment_number": f.AmendmentNumber,
	}
	if f.Quarter != models.QuarterNone {
		data["quarter"] = f.Quarter.String()
	}
	if summary != nil {
		data["fee_total"] = summary.Total().StringFixed(2)
	}
	msg := notify.Message{
		Template:   notify.TemplateFilingReceived,
		Recipients: recipients,
		Data:       data,
		FilingID:   f.ID,
	}

	bg := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(bg, s.notifyTimeout)
		defer cancel()
		if err := s.notifier.Dispatch(ctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "failed to dispatch filing notification",
				"filing_id", msg.FilingID, "template", msg.Template, "error", err)
			s.countNotificationFailure()
		}
	}()
}

func (s *Service) countNotificationFailure() {
	if s.metrics != nil {
		s.metrics.IncrementNotificationFailure()
	}
}
