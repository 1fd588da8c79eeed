package models

// All lists every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Organization{},
		&User{},
		&Resource{},
		&Service{},
		&Customer{},
		&Appointment{},
		&ReminderTemplate{},
		&ReminderLog{},
	}
}
