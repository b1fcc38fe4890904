package model

// MemberResponse is the API response DTO for GET /api/member/me
type MemberResponse struct {
	MemberID int64 `json:"member_id"`
}
