// Package amendment walks and validates amendment chains.
//
// A chain starts at a root filing (Amendment == false) and each amendment
// points at its immediate predecessor through AmendsPrevID. Every amendment in
// a chain shares the root's id as AmendsOrigID and numbers increase by one.
package amendment

import (
	"context"
	"errors"
	"fmt"

	"efile/internal/filing/models"
	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
	"efile/pkg/platform/sentinel"
)

// DefaultMaxDepth bounds chain walks.
const DefaultMaxDepth = 64

// FilingReader loads filings by id, returning sentinel.ErrNotFound when absent.
type FilingReader interface {
	FindByID(ctx context.Context, filingID id.FilingID) (*models.Filing, error)
}

// Resolver validates chains. It holds no store so callers can read through a
// transaction-bound one.
type Resolver struct {
	maxDepth int
}

type Option func(*Resolver)

// WithMaxDepth caps the number of predecessors a walk will follow.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Link validates prevID as the target of a new amendment and returns the
// linkage the amendment should carry along with the predecessor itself.
func (r *Resolver) Link(ctx context.Context, filings FilingReader, prevID id.FilingID) (models.AmendmentLink, *models.Filing, error) {
	prev, err := filings.FindByID(ctx, prevID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.AmendmentLink{}, nil, dErrors.Validation(dErrors.KindAmendmentTargetInvalid,
				"amended filing "+prevID.String()+" does not exist")
		}
		return models.AmendmentLink{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load amended filing")
	}
	if err := prev.CanAmend(); err != nil {
		return models.AmendmentLink{}, nil, err
	}
	chain, err := r.walk(ctx, filings, prev)
	if err != nil {
		return models.AmendmentLink{}, nil, err
	}
	if len(chain) >= r.maxDepth {
		return models.AmendmentLink{}, nil, dErrors.New(dErrors.CodeAmendmentChainBroken,
			fmt.Sprintf("amendment chain of %s would exceed %d filings", prevID, r.maxDepth))
	}

	link := models.AmendmentLink{PrevID: prev.ID, OrigID: prev.ID, Number: 1}
	if prev.Amendment {
		link.OrigID = *prev.AmendsOrigID
		link.Number = prev.AmendmentNumber + 1
	}
	return link, prev, nil
}

// Chain returns the chain ending at filingID, root first.
func (r *Resolver) Chain(ctx context.Context, filings FilingReader, filingID id.FilingID) ([]*models.Filing, error) {
	f, err := filings.FindByID(ctx, filingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "filing not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load filing")
	}
	return r.walk(ctx, filings, f)
}

// Predecessor returns the filing f amends directly.
func (r *Resolver) Predecessor(ctx context.Context, filings FilingReader, f *models.Filing) (*models.Filing, error) {
	if !f.Amendment {
		return nil, nil
	}
	if f.AmendsPrevID == nil {
		return nil, dErrors.New(dErrors.CodeAmendmentChainBroken, "amendment "+f.ID.String()+" has no predecessor")
	}
	prev, err := filings.FindByID(ctx, *f.AmendsPrevID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeAmendmentChainBroken,
				"predecessor "+f.AmendsPrevID.String()+" of "+f.ID.String()+" is missing")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load predecessor")
	}
	return prev, nil
}

// walk follows predecessors from f back to the root and returns the chain
// root first. Missing links, cycles, depth overflow, a drifting original id
// or a non-consecutive amendment number break the chain.
func (r *Resolver) walk(ctx context.Context, filings FilingReader, f *models.Filing) ([]*models.Filing, error) {
	chain := []*models.Filing{f}
	visited := map[id.FilingID]bool{f.ID: true}
	cur := f
	for cur.Amendment {
		prev, err := r.Predecessor(ctx, filings, cur)
		if err != nil {
			return nil, err
		}
		if visited[prev.ID] {
			return nil, dErrors.New(dErrors.CodeAmendmentChainBroken, "amendment chain of "+f.ID.String()+" contains a cycle")
		}
		if want := cur.AmendmentNumber - 1; prev.Amendment && prev.AmendmentNumber != want || !prev.Amendment && want != 0 {
			return nil, dErrors.New(dErrors.CodeAmendmentChainBroken,
				fmt.Sprintf("amendment %s is numbered %d after %d", cur.ID, cur.AmendmentNumber, prev.AmendmentNumber))
		}
		visited[prev.ID] = true
		chain = append(chain, prev)
		if len(chain) > r.maxDepth {
			return nil, dErrors.New(dErrors.CodeAmendmentChainBroken,
				fmt.Sprintf("amendment chain of %s exceeds %d filings", f.ID, r.maxDepth))
		}
		cur = prev
	}

	root := cur
	for _, link := range chain {
		if link.Amendment && (link.AmendsOrigID == nil || *link.AmendsOrigID != root.ID) {
			return nil, dErrors.New(dErrors.CodeAmendmentChainBroken,
				"amendment "+link.ID.String()+" does not reference original "+root.ID.String())
		}
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
