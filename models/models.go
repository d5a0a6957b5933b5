package models

// All lists every table, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Room{},
		&Booking{},
		&Invoice{},
		&Payment{},
		&Notification{},
	}
}
