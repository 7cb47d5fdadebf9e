package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lin871229/lottery-app-v4/internal/district"
	"github.com/lin871229/lottery-app-v4/internal/draw"
	"github.com/lin871229/lottery-app-v4/internal/draw/metrics"
	drawstore "github.com/lin871229/lottery-app-v4/internal/draw/store"
	"github.com/lin871229/lottery-app-v4/internal/export"
	rosterstore "github.com/lin871229/lottery-app-v4/internal/roster/store"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

const transportCSV = "單位名稱,服務區域\n" +
	"甲單位,左營區、鼓山區\n" +
	"乙單位,左營區\n" +
	"丙單位,左營區(備註)\n" +
	"丁單位,三民區\n"

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	sessions *drawstore.InMemorySessionStore
	rosters  *rosterstore.InMemoryRosterStore
	metrics  *metrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 6, 3, 1, 0, 0, 0, time.UTC)
	s.sessions = drawstore.New()
	s.rosters = rosterstore.New()
	s.metrics = metrics.New(prometheus.NewRegistry())
	loc, err := time.LoadLocation("Asia/Taipei")
	s.Require().NoError(err)

	s.service = New(s.sessions, s.rosters, district.Kaohsiung(),
		WithLogger(zap.NewNop()),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
		WithRandom(draw.NewSeeded(42)),
		WithLocation(loc),
		WithMaxDrawCount(5),
	)
}

func (s *ServiceSuite) loadTransport() *RosterSummary {
	summary, err := s.service.LoadRoster(s.ctx, "名冊.csv", strings.NewReader(transportCSV), "transport")
	s.Require().NoError(err)
	return summary
}

func (s *ServiceSuite) newSession() id.SessionID {
	summary, err := s.service.CreateSession(s.ctx)
	s.Require().NoError(err)
	return summary.ID
}

func (s *ServiceSuite) TestListDistricts() {
	districts := s.service.ListDistricts()
	s.Len(districts, 38)
	s.Equal("鹽埕區", districts[0])
}

func (s *ServiceSuite) TestLoadRoster() {
	s.Run("stores normalized roster", func() {
		summary := s.loadTransport()
		s.Equal("transport", summary.Layout)
		s.Equal("名冊.csv", summary.Filename)
		s.Equal(4, summary.Organizations)
		s.Equal([]id.ServiceCategory{id.CategoryTransport}, summary.Categories)
		s.Equal(s.now, summary.UploadedAt)

		found, err := s.service.GetRoster(s.ctx, summary.ID)
		s.Require().NoError(err)
		s.Equal(summary, found)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RostersLoaded))
	})

	s.Run("default layout is legacy", func() {
		_, err := s.service.LoadRoster(s.ctx, "名冊.csv", strings.NewReader(transportCSV), "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeSchema), "transport rows have no legacy header on row 3")
	})

	s.Run("unknown layout", func() {
		_, err := s.service.LoadRoster(s.ctx, "名冊.csv", strings.NewReader(transportCSV), "weekly")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("unsupported file type", func() {
		_, err := s.service.LoadRoster(s.ctx, "名冊.pdf", strings.NewReader(transportCSV), "transport")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("unknown roster", func() {
		_, err := s.service.GetRoster(s.ctx, id.NewRosterID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestDrawLifecycle() {
	roster := s.loadTransport()
	sessionID := s.newSession()
	req := DrawRequest{RosterID: roster.ID, Category: "transport", District: "左營區", Count: 2}

	first, err := s.service.Draw(s.ctx, sessionID, req)
	s.Require().NoError(err)
	s.Len(first.Organizations, 2)
	s.Equal(s.now, first.DrawnAt)

	pool, err := s.service.Pool(s.ctx, sessionID, roster.ID, "交通接送", "左營區")
	s.Require().NoError(err)
	s.Len(pool, 1)

	_, err = s.service.Draw(s.ctx, sessionID, req)
	var insufficient *draw.InsufficientPoolError
	s.Require().ErrorAs(err, &insufficient)
	s.Equal(1, insufficient.Available)

	req.Count = 1
	last, err := s.service.Draw(s.ctx, sessionID, req)
	s.Require().NoError(err)
	s.Equal(pool[0].ID, last.Organizations[0].ID)

	history, err := s.service.History(s.ctx, sessionID, "")
	s.Require().NoError(err)
	s.Len(history, 3)

	s.Equal(2.0, testutil.ToFloat64(s.metrics.Draws.WithLabelValues("transport", metrics.OutcomeSuccess)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Draws.WithLabelValues("transport", metrics.OutcomeInsufficientPool)))
	s.Equal(3.0, testutil.ToFloat64(s.metrics.OrganizationsDrawn.WithLabelValues("transport")))

	summary, err := s.service.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(3, summary.Draws)
	s.Equal(map[id.ServiceCategory]int{id.CategoryTransport: 3}, summary.Excluded)

	s.Require().NoError(s.service.Reset(s.ctx, sessionID, "transport"))
	summary, err = s.service.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Empty(summary.Excluded)
	s.Equal(3, summary.Draws)
}

func (s *ServiceSuite) TestInsufficientPoolLogsMissingColumn() {
	core, logs := observer.New(zapcore.InfoLevel)
	s.service = New(s.sessions, s.rosters, district.Kaohsiung(),
		WithLogger(zap.New(core)),
		WithClock(func() time.Time { return s.now }),
	)
	roster := s.loadTransport()
	sessionID := s.newSession()

	_, err := s.service.Draw(s.ctx, sessionID, DrawRequest{RosterID: roster.ID, Category: "home_respite", District: "左營區", Count: 1})
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPool))
	_, err = s.service.Draw(s.ctx, sessionID, DrawRequest{RosterID: roster.ID, Category: "transport", District: "三民區", Count: 2})
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPool))

	rejected := logs.FilterMessage("draw rejected: insufficient pool").All()
	s.Require().Len(rejected, 2)
	s.Equal(false, rejected[0].ContextMap()["roster_has_category"])
	s.Equal(true, rejected[1].ContextMap()["roster_has_category"])
}

func (s *ServiceSuite) TestDrawValidation() {
	roster := s.loadTransport()
	sessionID := s.newSession()

	tests := []struct {
		name string
		req  DrawRequest
		code dErrors.Code
	}{
		{"unknown category", DrawRequest{RosterID: roster.ID, Category: "meals", District: "左營區", Count: 1}, dErrors.CodeInvalidArgument},
		{"unknown district", DrawRequest{RosterID: roster.ID, Category: "transport", District: "台北", Count: 1}, dErrors.CodeInvalidArgument},
		{"count above cap", DrawRequest{RosterID: roster.ID, Category: "transport", District: "左營區", Count: 6}, dErrors.CodeInvalidArgument},
		{"unknown roster", DrawRequest{RosterID: id.NewRosterID(), Category: "transport", District: "左營區", Count: 1}, dErrors.CodeNotFound},
		{"category without column", DrawRequest{RosterID: roster.ID, Category: "home_respite", District: "左營區", Count: 1}, dErrors.CodeInsufficientPool},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Draw(s.ctx, sessionID, tt.req)
			s.Require().Error(err)
			s.Equal(tt.code, dErrors.CodeOf(err))
		})
	}

	_, err := s.service.Draw(s.ctx, id.NewSessionID(), DrawRequest{RosterID: roster.ID, Category: "transport", District: "左營區", Count: 1})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	history, err := s.service.History(s.ctx, sessionID, "")
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *ServiceSuite) TestResetAndHistoryFilter() {
	roster := s.loadTransport()
	sessionID := s.newSession()
	req := DrawRequest{RosterID: roster.ID, Category: "transport", District: "左營區", Count: 3}

	_, err := s.service.Draw(s.ctx, sessionID, req)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Reset(s.ctx, sessionID, "transport"))
	_, err = s.service.Draw(s.ctx, sessionID, req)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Reset(s.ctx, sessionID, ""))
	s.True(dErrors.HasCode(s.service.Reset(s.ctx, sessionID, "meals"), dErrors.CodeInvalidArgument))

	transport, err := s.service.History(s.ctx, sessionID, "交通接送")
	s.Require().NoError(err)
	s.Len(transport, 6)
	respite, err := s.service.History(s.ctx, sessionID, "home_respite")
	s.Require().NoError(err)
	s.Empty(respite)
}

func (s *ServiceSuite) TestExport() {
	roster := s.loadTransport()
	sessionID := s.newSession()
	_, err := s.service.Draw(s.ctx, sessionID, DrawRequest{RosterID: roster.ID, Category: "transport", District: "三民區", Count: 1})
	s.Require().NoError(err)

	var buf bytes.Buffer
	s.Require().NoError(s.service.Export(s.ctx, &buf, sessionID, export.FormatCSV, ""))
	s.Equal("\xEF\xBB\xBF單位名稱,抽籤欄位,抽籤區域,抽選時間\r\n丁單位,交通接送,三民區,2024-06-03 09:00:00\r\n", buf.String())

	err = s.service.Export(s.ctx, &buf, id.NewSessionID(), export.FormatCSV, "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestEndSessionAndSweep() {
	ended := s.newSession()
	s.Require().NoError(s.service.EndSession(s.ctx, ended))
	s.True(dErrors.HasCode(s.service.EndSession(s.ctx, ended), dErrors.CodeNotFound))

	s.loadTransport()
	idle := s.newSession()
	s.now = s.now.Add(13 * time.Hour)
	active := s.newSession()

	sessions, rosters, err := s.service.Sweep(s.ctx, 12*time.Hour)
	s.Require().NoError(err)
	s.Equal(1, sessions)
	s.Equal(1, rosters)

	_, err = s.service.GetSession(s.ctx, idle)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.service.GetSession(s.ctx, active)
	s.NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionsExpired))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ActiveSessions))
}

func (s *ServiceSuite) TestSweepKeepsRostersInUse() {
	roster := s.loadTransport()
	sessionID := s.newSession()

	for hour := 0; hour < 13; hour++ {
		s.now = s.now.Add(time.Hour)
		_, err := s.service.Pool(s.ctx, sessionID, roster.ID, "transport", "左營區")
		s.Require().NoError(err)
	}

	sessions, rosters, err := s.service.Sweep(s.ctx, 12*time.Hour)
	s.Require().NoError(err)
	s.Zero(sessions)
	s.Zero(rosters)

	_, err = s.service.Draw(s.ctx, sessionID, DrawRequest{RosterID: roster.ID, Category: "transport", District: "左營區", Count: 1})
	s.NoError(err, "a roster read every hour outlives its upload age")

	s.now = s.now.Add(13 * time.Hour)
	_, rosters, err = s.service.Sweep(s.ctx, 12*time.Hour)
	s.Require().NoError(err)
	s.Equal(1, rosters)
	_, err = s.service.GetRoster(s.ctx, roster.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
