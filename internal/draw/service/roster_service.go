package service

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lin871229/lottery-app-v4/internal/roster"
	"github.com/lin871229/lottery-app-v4/internal/roster/layouts"
	"github.com/lin871229/lottery-app-v4/internal/roster/reader"
	rosterstore "github.com/lin871229/lottery-app-v4/internal/roster/store"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

// RosterSummary describes a normalized roster.
type RosterSummary struct {
	ID            id.RosterID
	Filename      string
	Layout        string
	Sheet         string
	Organizations int
	Categories    []id.ServiceCategory
	Warnings      []roster.RowWarning
	UploadedAt    time.Time
}

func summarize(entry *rosterstore.Entry) *RosterSummary {
	return &RosterSummary{
		ID:            entry.ID,
		Filename:      entry.Filename,
		Layout:        entry.Result.Layout,
		Sheet:         entry.Result.Sheet,
		Organizations: entry.Result.Len(),
		Categories:    entry.Result.Categories,
		Warnings:      entry.Result.Warnings,
		UploadedAt:    entry.UploadedAt,
	}
}

// ParseRoster reads and normalizes an upload without storing it. An empty
// layoutName selects the default layout.
//
// Errors: CodeInvalidArgument (unknown layout or file type), CodeBadRequest
// (unreadable file), CodeSchema (required columns missing).
func (s *Service) ParseRoster(ctx context.Context, filename string, r io.Reader, layoutName string) (*roster.Result, error) {
	_, span := s.tracer.Start(ctx, "roster.Parse", trace.WithAttributes(
		attribute.String("lottery.filename", filename),
		attribute.String("lottery.layout", layoutName),
	))
	defer span.End()

	layout, err := s.resolveLayout(layoutName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	table, err := reader.Read(filename, r, layout.Sheet)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	result, err := roster.Normalize(table, layout, s.catalog)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("lottery.organizations", result.Len()),
		attribute.Int("lottery.warnings", len(result.Warnings)),
	)
	return result, nil
}

// LoadRoster parses an upload and stores the result for sessions to draw from.
func (s *Service) LoadRoster(ctx context.Context, filename string, r io.Reader, layoutName string) (*RosterSummary, error) {
	start := time.Now()
	result, err := s.ParseRoster(ctx, filename, r, layoutName)
	if err != nil {
		s.logger.Info("roster rejected",
			zap.String("filename", filename),
			zap.String("code", string(dErrors.CodeOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	entry := &rosterstore.Entry{
		ID:         id.NewRosterID(),
		Filename:   filename,
		UploadedAt: s.clock(),
		Result:     result,
	}
	if err := s.rosters.Save(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store roster")
	}
	s.metrics.ObserveRosterLoad(len(result.Warnings), start)

	s.logger.Info("roster loaded",
		zap.String("roster_id", entry.ID.String()),
		zap.String("filename", filename),
		zap.String("layout", result.Layout),
		zap.Int("organizations", result.Len()),
		zap.Int("warnings", len(result.Warnings)),
	)
	return summarize(entry), nil
}

// GetRoster returns the summary of a stored roster.
func (s *Service) GetRoster(ctx context.Context, rosterID id.RosterID) (*RosterSummary, error) {
	entry, err := s.findRoster(ctx, rosterID)
	if err != nil {
		return nil, err
	}
	return summarize(entry), nil
}

func (s *Service) resolveLayout(name string) (roster.Layout, error) {
	if name == "" && s.layout.Name != "" {
		return s.layout, nil
	}
	return layouts.Load(name)
}
