package handler

import (
	"strings"

	"github.com/lin871229/lottery-app-v4/internal/draw/service"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

// DrawRequest is the HTTP request body for POST /sessions/{sessionID}/draws.
type DrawRequest struct {
	RosterID string `json:"roster_id"`
	Category string `json:"category"`
	District string `json:"district"`
	Count    int    `json:"count"`

	parsedRosterID id.RosterID
	parsedCategory id.ServiceCategory
}

// Validate normalizes and checks the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *DrawRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	rosterID, err := id.ParseRosterID(r.RosterID)
	if err != nil {
		return err
	}
	r.parsedRosterID = rosterID

	category, err := id.ParseServiceCategory(r.Category)
	if err != nil {
		return err
	}
	r.parsedCategory = category

	r.District = strings.TrimSpace(r.District)
	if r.District == "" {
		return dErrors.New(dErrors.CodeInvalidArgument, "district is required")
	}
	if r.Count < 1 {
		return dErrors.New(dErrors.CodeInvalidArgument, "count must be at least 1")
	}
	return nil
}

func (r *DrawRequest) toService() service.DrawRequest {
	return service.DrawRequest{
		RosterID: r.parsedRosterID,
		Category: string(r.parsedCategory),
		District: r.District,
		Count:    r.Count,
	}
}

// ResetRequest is the optional body of POST /sessions/{sessionID}/reset.
type ResetRequest struct {
	Category string `json:"category"`
}

func (r *ResetRequest) Validate() error {
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		return nil
	}
	category, err := id.ParseServiceCategory(r.Category)
	if err != nil {
		return err
	}
	r.Category = string(category)
	return nil
}
