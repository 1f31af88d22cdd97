package document

import "efile/internal/filing/models"

// Ec603 is the lobbyist firm quarterly disclosure.
type Ec603 struct {
	Header
	Quarter       models.Quarter `json:"quarter" validate:"required,oneof=Q1 Q2 Q3 Q4"`
	PeriodStart   models.Date    `json:"period_start"`
	PeriodEnd     models.Date    `json:"period_end"`
	IsTermination bool           `json:"is_termination"`
	ScheduleA1    []Row          `json:"schedule_a_1"`
	ScheduleA2    []Row          `json:"schedule_a_2"`
	ScheduleB     []Row          `json:"schedule_b"`
	ScheduleC     []Row          `json:"schedule_c"`
	ScheduleD     []Row          `json:"schedule_d"`
	ScheduleE     []Row          `json:"schedule_e"`
	ScheduleF     []Row          `json:"schedule_f"`
	ScheduleG     []Row          `json:"schedule_g"`
	Registered    Registered     `json:"registered"`
}

var ec603Comments = []string{
	"schedule_a_1", "schedule_a_2", "schedule_b", "schedule_c",
	"schedule_d", "schedule_e", "schedule_f", "schedule_g",
}

// ContactInfoChanged is always false; quarterly reports refresh contact info
// from the entity record instead of changing it.
func (d *Ec603) ContactInfoChanged() bool { return false }

func (d *Ec603) Validate() error {
	var c checker
	if err := c.structTags(d); err != nil {
		return err
	}
	c.header(&d.Header, string(models.FilingTypeEC603))
	if d.PeriodStart.IsZero() || d.PeriodEnd.IsZero() {
		c.add("period_start", "reporting period is required")
	} else if d.PeriodEnd.Before(d.PeriodStart) {
		c.add("period_end", "must not precede period_start")
	}
	return c.result()
}

func (d *Ec603) normalize() {
	d.ScheduleA1 = nonNil(d.ScheduleA1)
	d.ScheduleA2 = nonNil(d.ScheduleA2)
	d.ScheduleB = nonNil(d.ScheduleB)
	d.ScheduleC = nonNil(d.ScheduleC)
	d.ScheduleD = nonNil(d.ScheduleD)
	d.ScheduleE = nonNil(d.ScheduleE)
	d.ScheduleF = nonNil(d.ScheduleF)
	d.ScheduleG = nonNil(d.ScheduleG)
	d.Registered.Lobbyists = nonNil(d.Registered.Lobbyists)
	d.Registered.Clients = nonNil(d.Registered.Clients)
	d.Registered.MuniDecisions = nonNil(d.Registered.MuniDecisions)
	d.Comments = withKeys(d.Comments, ec603Comments)
}
