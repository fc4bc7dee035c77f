package dto

type ProfileRequest struct {
	FirstName string `json:"first_name" binding:"max=100" example:"Ada"`
	LastName  string `json:"last_name" binding:"max=100" example:"Lovelace"`
	Email     string `json:"email" binding:"max=254" example:"ada@example.com"`
}
