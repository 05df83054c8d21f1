package dto

// AuthorizeRequest is the body of POST /auth/authorize.
type AuthorizeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthorizeResponse carries the single-use code to exchange for a token.
type AuthorizeResponse struct {
	Code string `json:"code"`
}

// TokenRequest is the body of POST /auth/token. Code is set for the
// authorization_code grant, ClientID/ClientSecret for client_credentials.
type TokenRequest struct {
	GrantType    string `json:"grant_type" binding:"required"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse is the issued bearer token. ExpiresIn is in seconds.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
