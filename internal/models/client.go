package models

// Client is one row of the clients directory table. This core only reads it.
type Client struct {
	ClientID        string `db:"client_id"`
	Name            string `db:"name"`
	Email           string `db:"email"`
	Address         string `db:"address"`
	PaymentTermDays int    `db:"payment_term_days"`
}
