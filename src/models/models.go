package models

// All lists every model managed by migrations.
func All() []any {
	return []any{
		&User{},
		&Profile{},
		&Vehicle{},
		&Attachment{},
		&RentalOrder{},
		&PaymentAccount{},
		&Payment{},
		&RentalVehicleSession{},
		&VehicleSessionLocation{},
		&MaintenanceRequest{},
		&JobTask{},
	}
}
