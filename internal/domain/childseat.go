package domain

// ChildSeat is a seat type that can be added to a booking.
// A nil Price means the vehicle's ChildSeatFee applies.
type ChildSeat struct {
	ID           string
	Name         string
	MinAgeMonths int
	MaxAgeMonths int
	Price        *float64
	Active       bool
}
