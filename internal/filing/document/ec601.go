package document

import "efile/internal/filing/models"

// Ec601 is the lobbyist firm registration.
type Ec601 struct {
	Header
	LobbyingEntityContactInfoChange bool  `json:"lobbying_entity_contact_info_change"`
	ScheduleA                       []Row `json:"schedule_a"`
	ScheduleB                       []Row `json:"schedule_b"`
	ScheduleC1                      []Row `json:"schedule_c_1"`
	ScheduleC2                      []Row `json:"schedule_c_2"`
	ScheduleC3                      []Row `json:"schedule_c_3"`
	ScheduleD1                      []Row `json:"schedule_d_1"`
	ScheduleD2                      []Row `json:"schedule_d_2"`
}

var ec601Comments = []string{"schedule_a", "schedule_b", "schedule_c", "schedule_d"}

func (d *Ec601) ContactInfoChanged() bool { return d.LobbyingEntityContactInfoChange }

// Lobbyists is the schedule A roster.
func (d *Ec601) Lobbyists() []Row { return d.ScheduleA }

// Clients is the schedule B roster.
func (d *Ec601) Clients() []Row { return d.ScheduleB }

func (d *Ec601) Validate() error {
	var c checker
	if err := c.structTags(d); err != nil {
		return err
	}
	c.header(&d.Header, string(models.FilingTypeEC601))
	c.roster("schedule_a", LobbyistRefKey, d.ScheduleA, &d.Directory)
	c.roster("schedule_b", ClientRefKey, d.ScheduleB, &d.Directory)
	return c.result()
}

func (d *Ec601) normalize() {
	d.ScheduleA = nonNil(d.ScheduleA)
	d.ScheduleB = nonNil(d.ScheduleB)
	d.ScheduleC1 = nonNil(d.ScheduleC1)
	d.ScheduleC2 = nonNil(d.ScheduleC2)
	d.ScheduleC3 = nonNil(d.ScheduleC3)
	d.ScheduleD1 = nonNil(d.ScheduleD1)
	d.ScheduleD2 = nonNil(d.ScheduleD2)
	d.Comments = withKeys(d.Comments, ec601Comments)
}
