package dto

// CastVoteRequest carries +1, -1, or 0 to retract.
type CastVoteRequest struct {
	Value *int `json:"value" binding:"required"`
}
