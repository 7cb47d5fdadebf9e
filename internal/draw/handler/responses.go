package handler

import (
	"time"

	"github.com/lin871229/lottery-app-v4/internal/draw"
	"github.com/lin871229/lottery-app-v4/internal/draw/service"
	"github.com/lin871229/lottery-app-v4/internal/ledger"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
)

type DistrictsResponse struct {
	Districts []string `json:"districts"`
}

type CategoryResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type RosterResponse struct {
	RosterID      string              `json:"roster_id"`
	Filename      string              `json:"filename"`
	Layout        string              `json:"layout"`
	Sheet         string              `json:"sheet,omitempty"`
	Organizations int                 `json:"organizations"`
	Categories    []CategoryResponse  `json:"categories"`
	Warnings      []roster.RowWarning `json:"warnings"`
	UploadedAt    time.Time           `json:"uploaded_at"`
}

type SessionResponse struct {
	SessionID  string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Draws      int       `json:"draws"`
	// Excluded is keyed by category code.
	Excluded map[string]int `json:"excluded,omitempty"`
}

type OrganizationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Identifier   string `json:"identifier,omitempty"`
	HomeDistrict string `json:"home_district,omitempty"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Remarks      string `json:"remarks,omitempty"`
}

type DrawnOrganization struct {
	Seq int `json:"seq"`
	OrganizationResponse
}

type DrawResponse struct {
	Category      CategoryResponse    `json:"category"`
	District      string              `json:"district"`
	DrawnAt       time.Time           `json:"drawn_at"`
	Organizations []DrawnOrganization `json:"organizations"`
}

type PoolResponse struct {
	Count         int                    `json:"count"`
	Organizations []OrganizationResponse `json:"organizations"`
}

type EventResponse struct {
	Seq              int              `json:"seq"`
	OrganizationID   string           `json:"organization_id"`
	OrganizationName string           `json:"organization_name"`
	Category         CategoryResponse `json:"category"`
	District         string           `json:"district"`
	DrawnAt          time.Time        `json:"drawn_at"`
	RequestID        string           `json:"request_id,omitempty"`
}

type HistoryResponse struct {
	Events []EventResponse `json:"events"`
}

// InsufficientPoolResponse extends the error envelope with pool sizes.
type InsufficientPoolResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Requested        int    `json:"requested"`
	Available        int    `json:"available"`
}

func toCategoryResponse(c id.ServiceCategory) CategoryResponse {
	return CategoryResponse{Code: string(c), Label: c.Label()}
}

func toRosterResponse(s *service.RosterSummary) RosterResponse {
	categories := make([]CategoryResponse, len(s.Categories))
	for i, c := range s.Categories {
		categories[i] = toCategoryResponse(c)
	}
	warnings := s.Warnings
	if warnings == nil {
		warnings = []roster.RowWarning{}
	}
	return RosterResponse{
		RosterID:      s.ID.String(),
		Filename:      s.Filename,
		Layout:        s.Layout,
		Sheet:         s.Sheet,
		Organizations: s.Organizations,
		Categories:    categories,
		Warnings:      warnings,
		UploadedAt:    s.UploadedAt,
	}
}

func toSessionResponse(s *service.SessionSummary) SessionResponse {
	return SessionResponse{
		SessionID:  s.ID.String(),
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive,
		Draws:      s.Draws,
		Excluded:   excludedByCode(s.Excluded),
	}
}

func excludedByCode(counts map[id.ServiceCategory]int) map[string]int {
	if len(counts) == 0 {
		return nil
	}
	out := make(map[string]int, len(counts))
	for c, n := range counts {
		out[string(c)] = n
	}
	return out
}

func toOrganizationResponse(o roster.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           o.ID,
		Name:         o.Name,
		Identifier:   o.Identifier,
		HomeDistrict: o.HomeDistrict,
		Address:      o.Contact.Address,
		Phone:        o.Contact.Phone,
		Email:        o.Contact.Email,
		Remarks:      o.Remarks,
	}
}

func toDrawResponse(req *DrawRequest, result *draw.Result) DrawResponse {
	resp := DrawResponse{
		Category:      toCategoryResponse(req.parsedCategory),
		District:      req.District,
		DrawnAt:       result.DrawnAt,
		Organizations: make([]DrawnOrganization, len(result.Organizations)),
	}
	for i, org := range result.Organizations {
		seq := 0
		if i < len(result.Events) {
			seq = result.Events[i].Seq
		}
		resp.Organizations[i] = DrawnOrganization{Seq: seq, OrganizationResponse: toOrganizationResponse(org)}
	}
	return resp
}

func toEventResponse(e ledger.Event) EventResponse {
	return EventResponse{
		Seq:              e.Seq,
		OrganizationID:   e.OrganizationID,
		OrganizationName: e.OrganizationName,
		Category:         toCategoryResponse(e.Category),
		District:         e.District,
		DrawnAt:          e.DrawnAt,
		RequestID:        e.RequestID,
	}
}
