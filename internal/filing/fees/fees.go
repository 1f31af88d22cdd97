// Package fees computes registration fees for lobbyist filings.
//
// Lobbyists (schedule A) and clients (schedule B) are billed per head at the
// rate of the fee range containing their directory effective date. An
// amendment only bills roster entries absent from its immediate predecessor.
// All arithmetic is exact decimal.
package fees

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"efile/internal/filing/document"
	"efile/internal/filing/models"
	"efile/internal/filingconfig"
	dErrors "efile/pkg/domain-errors"
)

// Bucket groups roster entries billed under one fee range.
type Bucket struct {
	EffectiveDateIn string          `json:"effective_date_in"`
	Fee             decimal.Decimal `json:"fee"`
	Count           int             `json:"count"`
	start           models.Date
}

// Subtotal is Fee × Count.
func (b Bucket) Subtotal() decimal.Decimal {
	return b.Fee.Mul(decimal.NewFromInt(int64(b.Count)))
}

// Roster is the billing of one schedule.
type Roster struct {
	Details []Bucket        `json:"details"`
	Fees    decimal.Decimal `json:"fees"`
}

// Count is the number of billed entries.
func (r Roster) Count() int {
	n := 0
	for _, b := range r.Details {
		n += b.Count
	}
	return n
}

// Breakdown is the full fee computation. Per-head forms fill Lobbyists and
// Clients; fixed-fee forms fill Fee.
type Breakdown struct {
	Lobbyists *Roster          `json:"lobbyists,omitempty"`
	Clients   *Roster          `json:"clients,omitempty"`
	Fee       *decimal.Decimal `json:"fee,omitempty"`
}

// Total is the amount owed.
func (b *Breakdown) Total() decimal.Decimal {
	if b.Fee != nil {
		return *b.Fee
	}
	total := decimal.Zero
	if b.Lobbyists != nil {
		total = total.Add(b.Lobbyists.Fees)
	}
	if b.Clients != nil {
		total = total.Add(b.Clients.Fees)
	}
	return total
}

// Summary simplifies a per-head breakdown into the record embedded in a filed
// document.
func (b *Breakdown) Summary() (document.FeeSummary, error) {
	if b.Lobbyists == nil || b.Clients == nil {
		return document.FeeSummary{}, dErrors.New(dErrors.CodeNotImplemented, "fee summary is only defined for per-head fees")
	}
	return document.FeeSummary{
		Lobbyists:    b.Lobbyists.Count(),
		LobbyistFees: b.Lobbyists.Fees,
		Clients:      b.Clients.Count(),
		ClientFees:   b.Clients.Fees,
	}, nil
}

// ScheduleSource resolves fee schedules.
type ScheduleSource interface {
	FeeSchedule(ctx context.Context, t models.FilingType, year int) (filingconfig.FeeSchedule, error)
}

// Input is everything a computation reads. Previous is the immediate
// predecessor's document and is required for amendments of per-head forms.
type Input struct {
	Filing   *models.Filing
	Document document.Document
	Previous document.Document
}

// Engine computes fees. It is stateless apart from its schedule source, so
// repeated computations over the same input agree.
type Engine struct {
	schedules ScheduleSource
}

func NewEngine(schedules ScheduleSource) *Engine {
	return &Engine{schedules: schedules}
}

// Compute returns the fee breakdown of a filing.
func (e *Engine) Compute(ctx context.Context, in Input) (*Breakdown, error) {
	switch in.Filing.Type {
	case models.FilingTypeEC601:
		return e.computeFirm(ctx, in)
	case models.FilingTypeEC602:
		if in.Filing.Amendment {
			zero := decimal.Zero
			return &Breakdown{Fee: &zero}, nil
		}
		return nil, dErrors.New(dErrors.CodeNotImplemented, "ec602 registration fees are not implemented")
	default:
		return nil, dErrors.Validation(dErrors.KindUnsupportedFilingType,
			"fees are not assessed for "+in.Filing.Type.String())
	}
}

func (e *Engine) computeFirm(ctx context.Context, in Input) (*Breakdown, error) {
	doc, ok := in.Document.(*document.Ec601)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "ec601 filing does not hold an ec601 document")
	}
	lobbyists, clients := doc.Lobbyists(), doc.Clients()

	if in.Filing.Amendment {
		prev, ok := in.Previous.(*document.Ec601)
		if !ok {
			return nil, dErrors.New(dErrors.CodeAmendmentChainBroken,
				"predecessor document of amendment "+in.Filing.ID.String()+" is missing or not an ec601")
		}
		lobbyists = newEntries(lobbyists, prev.Lobbyists(), document.LobbyistRefKey)
		clients = newEntries(clients, prev.Clients(), document.ClientRefKey)
	}

	schedule, err := e.schedules.FeeSchedule(ctx, in.Filing.Type, in.Filing.Year)
	if err != nil {
		return nil, err
	}

	lr, err := bill(schedule, filingconfig.FeeKindLobbyist, "schedule_a", document.LobbyistRefKey, lobbyists, &doc.Directory)
	if err != nil {
		return nil, err
	}
	cr, err := bill(schedule, filingconfig.FeeKindClient, "schedule_b", document.ClientRefKey, clients, &doc.Directory)
	if err != nil {
		return nil, err
	}
	return &Breakdown{Lobbyists: lr, Clients: cr}, nil
}

// newEntries keeps rows whose entity is not on the predecessor's roster.
func newEntries(current, previous []document.Row, refKey string) []document.Row {
	seen := make(map[string]bool, len(previous))
	for _, row := range previous {
		seen[row.Ref(refKey)] = true
	}
	out := make([]document.Row, 0, len(current))
	for _, row := range current {
		if !seen[row.Ref(refKey)] {
			out = append(out, row)
		}
	}
	return out
}

func bill(schedule filingconfig.FeeSchedule, kind filingconfig.FeeKind, section, refKey string, rows []document.Row, dir *document.Directory) (*Roster, error) {
	buckets := make(map[string]*Bucket)
	for i, row := range rows {
		ref := row.Ref(refKey)
		field := fmt.Sprintf("%s[%d].%s", section, i, refKey)
		entity, ok := dir.Entity(ref)
		if !ok || entity.EffectiveDate.IsZero() {
			return nil, dErrors.Validation(dErrors.KindNoMatchingFeeSchedule,
				"no effective date for "+string(kind)+" "+ref,
				dErrors.FieldError{Field: field, Message: "entity " + ref + " has no dated directory record"})
		}
		r, ok := schedule.Match(entity.EffectiveDate)
		if !ok {
			return nil, dErrors.Validation(dErrors.KindNoMatchingFeeSchedule,
				"no fee range covers "+entity.EffectiveDate.String(),
				dErrors.FieldError{Field: field, Message: "effective date " + entity.EffectiveDate.String() + " is outside the fee schedule"})
		}
		label := r.Label()
		b, ok := buckets[label]
		if !ok {
			b = &Bucket{EffectiveDateIn: label, Fee: r.Rate(kind), start: r.Start}
			buckets[label] = b
		}
		b.Count++
	}

	roster := &Roster{Details: make([]Bucket, 0, len(buckets)), Fees: decimal.Zero}
	for _, b := range buckets {
		roster.Details = append(roster.Details, *b)
	}
	sort.Slice(roster.Details, func(i, j int) bool {
		return roster.Details[i].start.Before(roster.Details[j].start)
	})
	for _, b := range roster.Details {
		roster.Fees = roster.Fees.Add(b.Subtotal())
	}
	return roster, nil
}
