package models

// Status is the lifecycle state of a filing.
type Status string

const (
	StatusNew             Status = "new"
	StatusInProgress      Status = "in progress"
	StatusLocked          Status = "locked"
	StatusFiledFeePending Status = "filed fee pending"
	StatusFiled           Status = "filed"
	StatusCanceled        Status = "canceled"
)

// FiledStatuses are the statuses of a filing accepted by the city.
var FiledStatuses = []Status{StatusFiledFeePending, StatusFiled}

var statusTransitions = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusLocked, StatusFiledFeePending, StatusFiled, StatusCanceled},
	StatusInProgress: {StatusInProgress, StatusLocked, StatusFiledFeePending, StatusFiled, StatusCanceled},
	StatusLocked:     {StatusFiledFeePending, StatusFiled, StatusCanceled},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusLocked, StatusFiledFeePending, StatusFiled, StatusCanceled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// IsFiled reports membership in FiledStatuses.
func (s Status) IsFiled() bool {
	return s == StatusFiled || s == StatusFiledFeePending
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// IsEditable reports whether content updates are accepted.
func (s Status) IsEditable() bool {
	return s == StatusNew || s == StatusInProgress
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}
