package domain

// Client is the read-only projection of the client directory consumed by
// invoicing. Invoices store the reference, never a copy.
type Client struct {
	ClientID        string `json:"clientID"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	PaymentTermDays int    `json:"paymentTermDays"`
}
