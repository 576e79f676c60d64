package models

// MenuEntry links a restaurant with a product and tells whether it is on sale right now.
type MenuEntry struct {
	RestaurantID int
	ProductID    int
	Available    bool
}

// Restaurant is a branch able to cook and deliver orders from its own menu.
type Restaurant struct {
	ID           int
	Name         string
	Address      string
	ContactPhone string
	Menu         []MenuEntry
}
