package dto

import "time"

// CreateClientRequest is the body of POST /clients.
type CreateClientRequest struct {
	Label string `json:"label" binding:"required"`
}

// UpdateClientRequest is the body of PUT /clients/:id.
type UpdateClientRequest struct {
	Label string `json:"label" binding:"required"`
}

// ClientResponse is an API client as listed; the secret never appears here.
type ClientResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Scopes    []string  `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientCreateResponse is returned once, on creation. Only the bcrypt hash
// is stored, so the plaintext secret cannot be recovered afterwards.
type ClientCreateResponse struct {
	ClientResponse
	Secret string `json:"secret"`
}

// ClientListResponse is one page of clients.
type ClientListResponse struct {
	Items      []ClientResponse `json:"items"`
	Pagination PaginationInfo   `json:"pagination"`
}
