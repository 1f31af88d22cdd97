package document

import (
	"efile/internal/filing/models"
	id "efile/pkg/domain"
)

// FilerContact is the filer's current contact block as held by the entity store.
type FilerContact struct {
	FilerID    id.FilerID
	FirstName  string
	MiddleName string
	LastName   string
	Address1   string
	Address2   string
	City       string
	State      string
	Zipcode    string
	Phone      string
	Email      string
}

// NewParams seeds a new document.
type NewParams struct {
	Filing  *models.Filing
	Contact ContactInfo
}

// New builds the initial document of a non-amendment filing.
func New(p NewParams) (Document, error) {
	doc, err := Blank(p.Filing.Type)
	if err != nil {
		return nil, err
	}
	h := doc.Common()
	h.FilingID = p.Filing.ID
	h.Year = p.Filing.Year
	h.Amendment = false
	h.LobbyingEntityContactInfo = p.Contact
	if q, ok := doc.(*Ec603); ok {
		q.Quarter = p.Filing.Quarter
		q.PeriodStart = p.Filing.PeriodStart
		q.PeriodEnd = p.Filing.PeriodEnd
	}
	return doc, nil
}

// NewAmendment clones the predecessor's document into an amendment of it.
// Filer, fees and signature are cleared; contact info is overwritten with the
// entity's current record.
func NewAmendment(prev Document, f *models.Filing, contact ContactInfo) (Document, error) {
	doc, err := Clone(prev)
	if err != nil {
		return nil, err
	}
	h := doc.Common()
	h.FilingID = f.ID
	h.Amendment = true
	prevID := *f.AmendsPrevID
	h.AmendsID = &prevID
	h.AmendmentReason = nil
	h.Meta.FormName = f.FormName
	h.Filer = Filer{}
	h.Fees = nil
	h.Verification = Verification{}
	h.LobbyingEntityContactInfo = contact
	if e, ok := doc.(*Ec601); ok {
		e.LobbyingEntityContactInfoChange = false
	}
	return doc, nil
}

// ApplyFiler overwrites the filer section with the editor's current contact info.
func ApplyFiler(doc Document, fc FilerContact) {
	filerID := fc.FilerID
	doc.Common().Filer = Filer{
		FilerID:    &filerID,
		FirstName:  fc.FirstName,
		MiddleName: fc.MiddleName,
		LastName:   fc.LastName,
		Address1:   fc.Address1,
		Address2:   fc.Address2,
		City:       fc.City,
		State:      fc.State,
		Zipcode:    fc.Zipcode,
		Phone:      fc.Phone,
		Email:      fc.Email,
	}
}

// RegisteredFrom derives a quarterly report's registered roster from the
// registration it reports against. Lobbyists and clients are the directory
// records referenced by schedules A and B; a client row's description travels
// with it.
func RegisteredFrom(reg *Ec601) Registered {
	out := Registered{
		Lobbyists:     []Row{},
		Clients:       []Row{},
		MuniDecisions: []Row{},
	}
	for _, row := range reg.ScheduleA {
		if e, ok := reg.Directory.Entity(row.Ref(LobbyistRefKey)); ok {
			out.Lobbyists = append(out.Lobbyists, entityRow(e))
		}
	}
	for _, row := range reg.ScheduleB {
		e, ok := reg.Directory.Entity(row.Ref(ClientRefKey))
		if !ok {
			continue
		}
		r := entityRow(e)
		if desc, ok := row["client_description"]; ok {
			r["client_description"] = desc
		}
		out.Clients = append(out.Clients, r)
	}
	for _, md := range reg.Directory.MuniDecisions {
		out.MuniDecisions = append(out.MuniDecisions, copyRow(md))
	}
	return out
}

func entityRow(e DirectoryEntity) Row {
	r := make(Row, len(e.Attrs)+2)
	for k, v := range e.Attrs {
		r[k] = v
	}
	r["id"] = e.ID
	if !e.EffectiveDate.IsZero() {
		r["effective_date"] = e.EffectiveDate.String()
	}
	return r
}

func copyRow(in Row) Row {
	out := make(Row, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
