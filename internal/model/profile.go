package model

import "time"

type Profile struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	Gender           string    `db:"gender"`
	Birthdate        time.Time `db:"birthdate"`
	Bio              string    `db:"bio"`
	RegistrationDate time.Time `db:"registration_date"`
}

// PublicProfile is a profile joined with its username for display.
type PublicProfile struct {
	Profile
	Username string `db:"username"`
}
