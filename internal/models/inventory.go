package models

// Inventory is a locked snapshot of the capacity behind a bookable item
type Inventory struct {
	Ref       BookableRef
	Name      string
	UnitPrice float64
	// Capacity is max guests for a tour, seat capacity for a flight and 1 for a room
	Capacity int
	Used     int
	// Open is false for cancelled or finished tours and departed flights
	Open bool
}

// Remaining is the number of units still free
func (i Inventory) Remaining() int {
	return i.Capacity - i.Used
}

// ReservedUnits is how much inventory the booking holds while PENDING or
// CONFIRMED. A room booking holds the room itself whatever the night count.
func (b *Booking) ReservedUnits() int {
	switch b.Item.Type {
	case BookingTypeRoom:
		return 1
	case BookingTypeTour, BookingTypeFlight:
		return b.Quantity
	}
	return 0
}
