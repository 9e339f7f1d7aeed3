package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/config"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/repository"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// DashboardReport carries the rolling-window KPIs.
type DashboardReport struct {
	WindowDays             int      `json:"window_days"`
	TotalTickets           int      `json:"total_tickets"`
	OpenTickets            int      `json:"open_tickets"`
	ResolvedTickets        int      `json:"resolved_tickets"`
	ClosedTickets          int      `json:"closed_tickets"`
	EscalatedTickets       int      `json:"escalated_tickets"`
	ResolutionRate         float64  `json:"resolution_rate"`
	AverageRating          *float64 `json:"average_rating"`
	AverageResolutionHours *float64 `json:"average_resolution_hours"`
}

// TeamPerformance is the per-team rollup.
type TeamPerformance struct {
	TeamID                 string   `json:"team_id"`
	TeamName               string   `json:"team_name"`
	AssignedTickets        int      `json:"assigned_tickets"`
	ResolvedTickets        int      `json:"resolved_tickets"`
	ResolutionRate         float64  `json:"resolution_rate"`
	AverageResolutionHours *float64 `json:"average_resolution_hours"`
	AverageRating          *float64 `json:"average_rating"`
	MemberCount            int      `json:"member_count"`
}

// CategoryStats is the per-category rollup.
type CategoryStats struct {
	CategoryID             string   `json:"category_id"`
	CategoryName           string   `json:"category_name"`
	TotalTickets           int      `json:"total_tickets"`
	ResolvedTickets        int      `json:"resolved_tickets"`
	ResolutionRate         float64  `json:"resolution_rate"`
	AverageResolutionHours *float64 `json:"average_resolution_hours"`
	AverageRating          *float64 `json:"average_rating"`
}

// NeighborhoodStat is one district's slice of the top-N report.
type NeighborhoodStat struct {
	DistrictID   string         `json:"district_id"`
	DistrictName string         `json:"district_name"`
	TotalTickets int            `json:"total_tickets"`
	ByCategory   map[string]int `json:"by_category"`
}

// FeedbackTrend is the per-category feedback distribution.
type FeedbackTrend struct {
	CategoryID    string      `json:"category_id"`
	CategoryName  string      `json:"category_name"`
	FeedbackCount int         `json:"feedback_count"`
	AverageRating *float64    `json:"average_rating"`
	Histogram     map[int]int `json:"histogram"`
}

// AnalyticsService computes read-only reports over the ticket stream.
// Every report shares one window-scan primitive and one resolution-rate
// formula so overlapping numbers always agree.
type AnalyticsService struct {
	tickets    repository.TicketRepository
	feedback   repository.FeedbackRepository
	teams      repository.TeamRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	districts  repository.DistrictRepository
	cache      *redis.Client
	cfg        config.AnalyticsConfig
	logger     *zap.Logger
	now        func() time.Time
}

// AnalyticsDependencies bundles collaborators. Cache may be nil.
type AnalyticsDependencies struct {
	TicketRepo   repository.TicketRepository
	FeedbackRepo repository.FeedbackRepository
	TeamRepo     repository.TeamRepository
	UserRepo     repository.UserRepository
	CategoryRepo repository.CategoryRepository
	DistrictRepo repository.DistrictRepository
	Cache        *redis.Client
	Config       config.AnalyticsConfig
	Logger       *zap.Logger
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	return &AnalyticsService{
		tickets:    deps.TicketRepo,
		feedback:   deps.FeedbackRepo,
		teams:      deps.TeamRepo,
		users:      deps.UserRepo,
		categories: deps.CategoryRepo,
		districts:  deps.DistrictRepo,
		cache:      deps.Cache,
		cfg:        deps.Config,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// windowScan is the shared single pass over the reporting window.
type windowScan struct {
	tickets          []domain.Ticket
	feedback         []domain.Feedback
	ratingByTicketID map[string]int
}

func (s *AnalyticsService) scanWindow(ctx context.Context, days int) (*windowScan, error) {
	since := s.now().AddDate(0, 0, -days)
	tickets, err := s.tickets.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	feedback, err := s.feedback.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ratings := make(map[string]int, len(feedback))
	for i := range feedback {
		ratings[feedback[i].TicketID] = feedback[i].Rating
	}
	return &windowScan{tickets: tickets, feedback: feedback, ratingByTicketID: ratings}, nil
}

// resolutionRate is the one shared formula: (resolved+closed)/total,
// exactly zero for an empty window.
func resolutionRate(resolvedAndClosed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(resolvedAndClosed) / float64(total)
}

// Dashboard computes the KPI report, served from the redis cache when a
// fresh copy exists.
func (s *AnalyticsService) Dashboard(ctx context.Context, days int) (*DashboardReport, error) {
	days = s.normalizeDays(days)
	cacheKey := fmt.Sprintf("analytics:dashboard:%d", days)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		var report DashboardReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	scan, err := s.scanWindow(ctx, days)
	if err != nil {
		return nil, err
	}

	report := &DashboardReport{WindowDays: days, TotalTickets: len(scan.tickets)}
	var resolutionHours []float64
	for i := range scan.tickets {
		t := &scan.tickets[i]
		switch t.Status {
		case domain.TicketStatusResolved:
			report.ResolvedTickets++
		case domain.TicketStatusClosed:
			report.ClosedTickets++
		case domain.TicketStatusEscalated:
			report.EscalatedTickets++
			report.OpenTickets++
		default:
			report.OpenTickets++
		}
		if t.ResolvedAt != nil {
			resolutionHours = append(resolutionHours, t.ResolvedAt.Sub(t.CreatedAt).Hours())
		}
	}
	report.ResolutionRate = resolutionRate(report.ResolvedTickets+report.ClosedTickets, report.TotalTickets)
	report.AverageResolutionHours = mean(resolutionHours)

	var ratings []float64
	for i := range scan.feedback {
		ratings = append(ratings, float64(scan.feedback[i].Rating))
	}
	report.AverageRating = mean(ratings)

	s.cacheSet(ctx, cacheKey, report)
	return report, nil
}

// TeamPerformanceReport computes per-team rollups over the window.
func (s *AnalyticsService) TeamPerformanceReport(ctx context.Context, days int) ([]TeamPerformance, error) {
	days = s.normalizeDays(days)
	scan, err := s.scanWindow(ctx, days)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byTeam := make(map[string][]*domain.Ticket)
	for i := range scan.tickets {
		t := &scan.tickets[i]
		if t.TeamID != nil {
			byTeam[*t.TeamID] = append(byTeam[*t.TeamID], t)
		}
	}

	result := make([]TeamPerformance, 0, len(teams))
	for i := range teams {
		team := &teams[i]
		assigned := byTeam[team.ID]
		perf := TeamPerformance{TeamID: team.ID, TeamName: team.Name, AssignedTickets: len(assigned)}

		var hours, ratings []float64
		resolvedAndClosed := 0
		for _, t := range assigned {
			if t.Status.IsResolvedLike() {
				resolvedAndClosed++
			}
			if t.Status == domain.TicketStatusResolved {
				perf.ResolvedTickets++
			}
			if t.ResolvedAt != nil {
				hours = append(hours, t.ResolvedAt.Sub(t.CreatedAt).Hours())
			}
			if rating, ok := scan.ratingByTicketID[t.ID]; ok {
				ratings = append(ratings, float64(rating))
			}
		}
		perf.ResolutionRate = resolutionRate(resolvedAndClosed, len(assigned))
		perf.AverageResolutionHours = mean(hours)
		perf.AverageRating = mean(ratings)

		count, err := s.users.CountByTeam(ctx, team.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		perf.MemberCount = int(count)
		result = append(result, perf)
	}
	return result, nil
}

// CategoryStatsReport computes per-category rollups over the window.
func (s *AnalyticsService) CategoryStatsReport(ctx context.Context, days int) ([]CategoryStats, error) {
	days = s.normalizeDays(days)
	scan, err := s.scanWindow(ctx, days)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byCategory := make(map[string][]*domain.Ticket)
	for i := range scan.tickets {
		t := &scan.tickets[i]
		byCategory[t.CategoryID] = append(byCategory[t.CategoryID], t)
	}

	result := make([]CategoryStats, 0, len(categories))
	for i := range categories {
		category := &categories[i]
		tickets := byCategory[category.ID]
		stats := CategoryStats{CategoryID: category.ID, CategoryName: category.Name, TotalTickets: len(tickets)}

		var hours, ratings []float64
		resolvedAndClosed := 0
		for _, t := range tickets {
			if t.Status.IsResolvedLike() {
				resolvedAndClosed++
			}
			if t.Status == domain.TicketStatusResolved {
				stats.ResolvedTickets++
			}
			if t.ResolvedAt != nil {
				hours = append(hours, t.ResolvedAt.Sub(t.CreatedAt).Hours())
			}
			if rating, ok := scan.ratingByTicketID[t.ID]; ok {
				ratings = append(ratings, float64(rating))
			}
		}
		stats.ResolutionRate = resolutionRate(resolvedAndClosed, len(tickets))
		stats.AverageResolutionHours = mean(hours)
		stats.AverageRating = mean(ratings)
		result = append(result, stats)
	}
	return result, nil
}

// NeighborhoodStatsReport returns the top-N districts by ticket count,
// ties broken by district name ascending, each with a per-category
// breakdown.
func (s *AnalyticsService) NeighborhoodStatsReport(ctx context.Context, days, topN int) ([]NeighborhoodStat, error) {
	days = s.normalizeDays(days)
	if topN <= 0 {
		topN = s.cfg.NeighborhoodTopN
	}
	scan, err := s.scanWindow(ctx, days)
	if err != nil {
		return nil, err
	}
	districts, err := s.districts.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	names := make(map[string]string, len(districts))
	for i := range districts {
		names[districts[i].ID] = districts[i].Name
	}

	byDistrict := make(map[string]*NeighborhoodStat)
	for i := range scan.tickets {
		t := &scan.tickets[i]
		stat, ok := byDistrict[t.Location.DistrictID]
		if !ok {
			stat = &NeighborhoodStat{
				DistrictID:   t.Location.DistrictID,
				DistrictName: names[t.Location.DistrictID],
				ByCategory:   make(map[string]int),
			}
			byDistrict[t.Location.DistrictID] = stat
		}
		stat.TotalTickets++
		stat.ByCategory[t.CategoryID]++
	}

	result := make([]NeighborhoodStat, 0, len(byDistrict))
	for _, stat := range byDistrict {
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalTickets != result[j].TotalTickets {
			return result[i].TotalTickets > result[j].TotalTickets
		}
		return result[i].DistrictName < result[j].DistrictName
	})
	if len(result) > topN {
		result = result[:topN]
	}
	return result, nil
}

// FeedbackTrendsReport computes per-category rating distributions.
func (s *AnalyticsService) FeedbackTrendsReport(ctx context.Context, days int) ([]FeedbackTrend, error) {
	days = s.normalizeDays(days)
	scan, err := s.scanWindow(ctx, days)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	categoryByTicket := make(map[string]string, len(scan.tickets))
	for i := range scan.tickets {
		categoryByTicket[scan.tickets[i].ID] = scan.tickets[i].CategoryID
	}

	trends := make(map[string]*FeedbackTrend, len(categories))
	for i := range categories {
		trends[categories[i].ID] = &FeedbackTrend{
			CategoryID:   categories[i].ID,
			CategoryName: categories[i].Name,
			Histogram:    map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		}
	}

	sums := make(map[string]int)
	for i := range scan.feedback {
		fb := &scan.feedback[i]
		categoryID, ok := categoryByTicket[fb.TicketID]
		if !ok {
			continue
		}
		trend, ok := trends[categoryID]
		if !ok {
			continue
		}
		trend.FeedbackCount++
		trend.Histogram[fb.Rating]++
		sums[categoryID] += fb.Rating
	}

	result := make([]FeedbackTrend, 0, len(categories))
	for i := range categories {
		trend := trends[categories[i].ID]
		if trend.FeedbackCount > 0 {
			avg := float64(sums[trend.CategoryID]) / float64(trend.FeedbackCount)
			trend.AverageRating = &avg
		}
		result = append(result, *trend)
	}
	return result, nil
}

func (s *AnalyticsService) normalizeDays(days int) int {
	if days <= 0 {
		return s.cfg.DefaultWindowDays
	}
	return days
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string) []byte {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("analytics cache read failed", zap.Error(err))
		}
		return nil
	}
	return data
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cfg.CacheTTL() <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL()).Err(); err != nil {
		s.logger.Debug("analytics cache write failed", zap.Error(err))
	}
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}
