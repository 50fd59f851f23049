package workshop

type Status string

const (
	StatusPending      Status = "PENDING"
	StatusInProgress   Status = "IN_PROGRESS"
	StatusWaitingParts Status = "WAITING_PARTS"
	StatusCompleted    Status = "COMPLETED"
	StatusDelivered    Status = "DELIVERED"
	StatusCancelled    Status = "CANCELLED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:      {StatusInProgress: true, StatusCancelled: true},
	StatusInProgress:   {StatusWaitingParts: true, StatusCompleted: true, StatusCancelled: true},
	StatusWaitingParts: {StatusInProgress: true, StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:    {StatusDelivered: true, StatusInProgress: true, StatusCancelled: true},
	StatusDelivered:    {},
	StatusCancelled:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func IsValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// ClosesOrder reports whether entering s stamps the work order's end date.
// Leaving a closing state (a re-opened order) clears it again.
func ClosesOrder(s Status) bool {
	return s == StatusCompleted || s == StatusDelivered
}
