package customer

type CreateCustomerReq struct {
	Name       string `json:"name" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

// UpdateCustomerReq is a partial update; absent fields stay untouched.
type UpdateCustomerReq struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	PostalCode *string `json:"postal_code" validate:"omitempty,min=1"`
	Phone      *string `json:"phone" validate:"omitempty,min=1"`
}
