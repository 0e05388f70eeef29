package models

// Student rows are provisioned externally and never mutated by this service.
type Student struct {
	ID           int64  `db:"id" json:"id"`
	UUID         string `db:"uuid" json:"uuid"`
	PasswordHash string `db:"password" json:"-"`
	Name         string `db:"name" json:"name"`
}
