package dto

// ─── Auth ────────────────────────────────────────────────────────────────────

type LoginRequest struct {
	// Identifier accepts either the account email or the username.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Username   string  `json:"username"`
	UserType   string  `json:"user_type"`
	Phone      *string `json:"phone,omitempty"`
	IsVerified bool    `json:"is_verified"`
}

// MeResponse adds the resolved actor context to the base user payload.
type MeResponse struct {
	UserResponse
	ActorKind    string  `json:"actor_kind"` // consumer | staff | superuser | none
	ConsumerID   *string `json:"consumer_id,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
	SupplierID   *string `json:"supplier_id,omitempty"`
	StaffRole    *string `json:"staff_role,omitempty"`
}

// ─── Registration ────────────────────────────────────────────────────────────

type RegisterConsumerRequest struct {
	Email        string `json:"email"         validate:"required,email"`
	Username     string `json:"username"      validate:"required,min=3"`
	Password     string `json:"password"      validate:"required,min=8"`
	BusinessName string `json:"business_name" validate:"required"`
	BusinessType string `json:"business_type" validate:"required,oneof=restaurant hotel cafe other"`
	Address      string `json:"address"`
	City         string `json:"city"`
}

type RegisterConsumerResponse struct {
	User        UserResponse     `json:"user"`
	AccessToken string           `json:"access_token"`
	Consumer    ConsumerResponse `json:"consumer_profile"`
}

type ConsumerResponse struct {
	ID           string `json:"id"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	Address      string `json:"address"`
	City         string `json:"city"`
}
