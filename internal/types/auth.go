package types

// AdminTokenRequest exchanges the administrator password for a bearer token.
type AdminTokenRequest struct {
	Password string `json:"password" validate:"required"`
}

// Validate validates the AdminTokenRequest using the validator.
func (r *AdminTokenRequest) Validate() error {
	return validate.Struct(r)
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// IndexRequest adds resume points to the vector store.
type IndexRequest struct {
	Points []string `json:"points" validate:"required,min=1,dive,required"`
}

// Validate validates the IndexRequest using the validator.
func (r *IndexRequest) Validate() error {
	return validate.Struct(r)
}
