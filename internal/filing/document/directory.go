package document

import (
	"encoding/json"
	"fmt"

	"efile/internal/filing/models"
)

// DirectoryEntity is a person or organization referenced by schedule rows.
type DirectoryEntity struct {
	ID            string
	EffectiveDate models.Date
	// Attrs holds every other column of the record.
	Attrs map[string]any
}

func (e DirectoryEntity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attrs)+2)
	for k, v := range e.Attrs {
		out[k] = v
	}
	out["id"] = e.ID
	out["effective_date"] = e.EffectiveDate
	return json.Marshal(out)
}

func (e *DirectoryEntity) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = DirectoryEntity{Attrs: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case "id":
			if err := json.Unmarshal(v, &e.ID); err != nil {
				return fmt.Errorf("directory entity id: %w", err)
			}
		case "effective_date":
			if err := json.Unmarshal(v, &e.EffectiveDate); err != nil {
				return fmt.Errorf("directory entity %s effective_date: %w", e.ID, err)
			}
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			e.Attrs[k] = val
		}
	}
	return nil
}

// Directory owns the entities and municipal decisions a document references.
// Lookup goes through an id index built when the directory is decoded; call
// Reindex after mutating Entities directly.
type Directory struct {
	Entities      []DirectoryEntity
	MuniDecisions []Row
	index         map[string]int
}

type directoryJSON struct {
	Entity       []DirectoryEntity `json:"entity"`
	MuniDecision []Row             `json:"muni_decision"`
}

func (d Directory) MarshalJSON() ([]byte, error) {
	out := directoryJSON{Entity: d.Entities, MuniDecision: d.MuniDecisions}
	if out.Entity == nil {
		out.Entity = []DirectoryEntity{}
	}
	if out.MuniDecision == nil {
		out.MuniDecision = []Row{}
	}
	return json.Marshal(out)
}

func (d *Directory) UnmarshalJSON(b []byte) error {
	var in directoryJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	d.Entities = in.Entity
	d.MuniDecisions = in.MuniDecision
	d.Reindex()
	return nil
}

// Reindex rebuilds the id index. The first record wins when ids repeat.
func (d *Directory) Reindex() {
	d.index = make(map[string]int, len(d.Entities))
	for i, e := range d.Entities {
		if _, seen := d.index[e.ID]; !seen {
			d.index[e.ID] = i
		}
	}
}

// Entity looks up a directory record by id.
func (d *Directory) Entity(entityID string) (DirectoryEntity, bool) {
	if d.index == nil {
		d.Reindex()
	}
	i, ok := d.index[entityID]
	if !ok {
		return DirectoryEntity{}, false
	}
	return d.Entities[i], true
}

// Add appends a record and indexes it.
func (d *Directory) Add(e DirectoryEntity) {
	d.Entities = append(d.Entities, e)
	if d.index == nil {
		d.Reindex()
		return
	}
	if _, seen := d.index[e.ID]; !seen {
		d.index[e.ID] = len(d.Entities) - 1
	}
}

// Duplicates lists ids that appear more than once.
func (d *Directory) Duplicates() []string {
	seen := make(map[string]bool, len(d.Entities))
	var dups []string
	for _, e := range d.Entities {
		if seen[e.ID] {
			dups = append(dups, e.ID)
			continue
		}
		seen[e.ID] = true
	}
	return dups
}
