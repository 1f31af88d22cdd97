package filingconfig

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"efile/internal/filing/models"
)

// Seed is the YAML document accepted by Import:
//
//	group: lobbyist
//	entries:
//	  - filing_type: ec601
//	    year: 2021
//	    fee_schedule:
//	      - {start: "2021-01-01", end: "2021-06-30", lobbyist: "50.00", client: "25.00"}
//	  - filing_type: ec603
//	    year: 2021
//	    deadlines: {Q1: "2021-04-30", Q2: "2021-07-31"}
type Seed struct {
	Group   string      `yaml:"group"`
	Entries []SeedEntry `yaml:"entries"`
}

type SeedEntry struct {
	FilingType  string            `yaml:"filing_type"`
	Year        int               `yaml:"year"`
	FeeSchedule []SeedFeeRange    `yaml:"fee_schedule"`
	Deadlines   map[string]string `yaml:"deadlines"`
}

type SeedFeeRange struct {
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Lobbyist string `yaml:"lobbyist"`
	Client   string `yaml:"client"`
}

// ParseSeed reads a seed document and converts it to validated entries.
func ParseSeed(r io.Reader) ([]Entry, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode config seed: %w", err)
	}
	group := seed.Group
	if group == "" {
		group = models.ConfigGroup
	}

	var out []Entry
	for i, se := range seed.Entries {
		t, err := models.ParseFilingType(se.FilingType)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if len(se.FeeSchedule) > 0 {
			fs, err := se.feeSchedule()
			if err != nil {
				return nil, fmt.Errorf("entry %d (%s %d): %w", i, t, se.Year, err)
			}
			value, err := fs.Encode()
			if err != nil {
				return nil, err
			}
			out = append(out, Entry{Key: Key{Group: group, FilingType: t, Year: se.Year, Name: KeyFees}, Value: value})
		}
		for qs, ds := range se.Deadlines {
			q, err := models.ParseQuarter(qs)
			if err != nil || q == models.QuarterNone {
				return nil, fmt.Errorf("entry %d: invalid quarter %q", i, qs)
			}
			d, err := models.ParseDate(ds)
			if err != nil {
				return nil, fmt.Errorf("entry %d: invalid %s deadline %q: %w", i, qs, ds, err)
			}
			out = append(out, Entry{Key: Key{Group: group, FilingType: t, Year: se.Year, Name: q.DeadlineKey()}, Value: d.String()})
		}
	}
	return out, nil
}

func (se SeedEntry) feeSchedule() (FeeSchedule, error) {
	var fs FeeSchedule
	for _, r := range se.FeeSchedule {
		start, err := models.ParseDate(r.Start)
		if err != nil {
			return FeeSchedule{}, fmt.Errorf("start %q: %w", r.Start, err)
		}
		end, err := models.ParseDate(r.End)
		if err != nil {
			return FeeSchedule{}, fmt.Errorf("end %q: %w", r.End, err)
		}
		lobbyist, err := decimal.NewFromString(r.Lobbyist)
		if err != nil {
			return FeeSchedule{}, fmt.Errorf("lobbyist fee %q: %w", r.Lobbyist, err)
		}
		client, err := decimal.NewFromString(r.Client)
		if err != nil {
			return FeeSchedule{}, fmt.Errorf("client fee %q: %w", r.Client, err)
		}
		fs.Ranges = append(fs.Ranges, FeeRange{Start: start, End: end, Lobbyist: lobbyist, Client: client})
	}
	if err := fs.normalize(); err != nil {
		return FeeSchedule{}, err
	}
	return fs, nil
}

// Import writes every entry to store.
func Import(ctx context.Context, store Store, entries []Entry) error {
	for _, e := range entries {
		if err := store.Put(ctx, e); err != nil {
			return fmt.Errorf("import %s: %w", e.Key, err)
		}
	}
	return nil
}
