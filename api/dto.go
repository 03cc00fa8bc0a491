/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Field names
  follow the original frontend contract (camelCase).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done by the domain (fixed field order), not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - donation/types.go: The domain model behind them
*/
package api

import (
	"time"

	"github.com/waste2give/marketplace/auth"
	"github.com/waste2give/marketplace/donation"
)

// =============================================================================
// DONATIONS
// =============================================================================

// DonationDTO represents a donation record in API responses.
type DonationDTO struct {
	ID            string  `json:"id"`
	Item          string  `json:"item"`
	Quantity      float64 `json:"quantity"`
	Weight        float64 `json:"weight"`
	Lbs           float64 `json:"lbs"`
	PickupTime    string  `json:"pickupTime"`
	Address       string  `json:"address"`
	DonorID       string  `json:"donorId"`
	Claimed       bool    `json:"claimed"`
	ReceiverID    string  `json:"receiverId,omitempty"`
	PostedAt      string  `json:"postedAt"`
	ClaimedAt     string  `json:"claimedAt,omitempty"`
	ImpactMessage string  `json:"impactMessage"`
}

func toDonationDTO(d donation.Donation) DonationDTO {
	quantity, _ := d.Quantity.Float64()
	weight, _ := d.Weight.Float64()
	lbs, _ := d.Pounds.Float64()

	dto := DonationDTO{
		ID:            string(d.ID),
		Item:          d.Item,
		Quantity:      quantity,
		Weight:        weight,
		Lbs:           lbs,
		PickupTime:    d.PickupTime,
		Address:       d.Address,
		DonorID:       string(d.DonorID),
		Claimed:       d.Claimed,
		ReceiverID:    string(d.ReceiverID),
		PostedAt:      d.PostedAt.Format(time.RFC3339),
		ImpactMessage: d.ImpactMessage,
	}
	if d.ClaimedAt != nil {
		dto.ClaimedAt = d.ClaimedAt.Format(time.RFC3339)
	}
	return dto
}

func toDonationDTOs(ds []donation.Donation) []DonationDTO {
	dtos := make([]DonationDTO, len(ds))
	for i, d := range ds {
		dtos[i] = toDonationDTO(d)
	}
	return dtos
}

// CreateDonationRequest is the request to post a donation.
type CreateDonationRequest struct {
	Item       string  `json:"item"`
	Quantity   float64 `json:"quantity"`
	Weight     float64 `json:"weight"`
	PickupTime string  `json:"pickupTime"`
	Address    string  `json:"address"`
	DonorID    string  `json:"donorId"`
}

// CreateDonationResponse reports the created record's id, computed pounds
// saved, and the impact message, so the client needs no second lookup.
type CreateDonationResponse struct {
	DonationID  string  `json:"donationId"`
	PoundsSaved float64 `json:"poundsSaved"`
	AiMessage   string  `json:"aiMessage"`
}

// ClaimRequest is the request to claim an open donation.
type ClaimRequest struct {
	DonationID string `json:"donationId"`
	ReceiverID string `json:"receiverId"`
}

// ClaimResponse wraps the fully updated record.
type ClaimResponse struct {
	Success  bool        `json:"success"`
	Donation DonationDTO `json:"donation"`
}

// =============================================================================
// HISTORY
// =============================================================================

// HistoryResponse is the per-user view of posted/received donations.
type HistoryResponse struct {
	UserID  string     `json:"userId"`
	History HistoryDTO `json:"history"`
	Stats   StatsDTO   `json:"stats"`
}

type HistoryDTO struct {
	Posted   []DonationDTO `json:"posted"`
	Received []DonationDTO `json:"received"`
}

type StatsDTO struct {
	TotalPoundsSaved    float64 `json:"totalPoundsSaved"`
	TotalPoundsReceived float64 `json:"totalPoundsReceived"`
	TotalTransactions   int     `json:"totalTransactions"`
}

// =============================================================================
// IMPACT
// =============================================================================

// ImpactRequest asks for a weight-tiered impact message.
type ImpactRequest struct {
	Lbs    float64 `json:"lbs"`
	UserID string  `json:"userId,omitempty"`
}

type ImpactResponse struct {
	ImpactMessage string `json:"impactMessage"`
}

// =============================================================================
// AUTH
// =============================================================================

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDTO is a user without credential material.
type UserDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

func toUserDTO(u auth.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, UserType: u.UserType}
}

// AuthResponse carries a fresh token and the user it belongs to.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// MeResponse wraps the current user.
type MeResponse struct {
	User UserDTO `json:"user"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}
