package models

import "github.com/google/uuid"

// assignID fills an empty primary key with a random UUID before insert.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
