package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"iq-quiz-service/internal/domain"
)

// ResultReader fetches persisted results for the dashboard.
type ResultReader interface {
	RecentResults(ctx context.Context, limit int) ([]domain.ResultRecord, error)
}

// DashboardSort orders the dashboard table.
type DashboardSort string

const (
	SortByDate  DashboardSort = "date"
	SortByScore DashboardSort = "score"
	SortByIQ    DashboardSort = "iq"
)

const defaultPageSize = 50

// DashboardPage is one rendered view of the dashboard: the (filtered,
// sorted) table plus aggregates recomputed over the fetched page.
type DashboardPage struct {
	Results    []domain.ResultRecord `json:"results"`
	Statistics domain.Statistics     `json:"statistics"`
}

// DashboardService is the read-only admin view over persisted results.
type DashboardService struct {
	results  ResultReader
	pageSize int
}

func NewDashboardService(results ResultReader, pageSize int) *DashboardService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &DashboardService{results: results, pageSize: pageSize}
}

// Overview fetches the most recent page of results and derives the view.
// Statistics cover the whole fetched page; the search filter only narrows
// the table.
func (d *DashboardService) Overview(ctx context.Context, search string, sortBy DashboardSort) (DashboardPage, error) {
	records, err := d.results.RecentResults(ctx, d.pageSize)
	if err != nil {
		return DashboardPage{}, fmt.Errorf("fetch results: %w", err)
	}

	stats := computeStatistics(records)
	filtered := filterByName(records, search)
	if err := sortRecords(filtered, sortBy); err != nil {
		return DashboardPage{}, err
	}

	return DashboardPage{Results: filtered, Statistics: stats}, nil
}

func computeStatistics(records []domain.ResultRecord) domain.Statistics {
	stats := domain.Statistics{TotalTests: len(records)}
	if len(records) == 0 {
		return stats
	}
	var score, iq, pct float64
	for _, rec := range records {
		score += float64(rec.Score)
		iq += float64(rec.IQScore)
		pct += rec.Percentage
	}
	n := float64(len(records))
	stats.AverageScore = round1(score / n)
	stats.AverageIQ = round1(iq / n)
	stats.AveragePercentage = round1(pct / n)
	return stats
}

func filterByName(records []domain.ResultRecord, search string) []domain.ResultRecord {
	if search == "" {
		return records
	}
	needle := strings.ToLower(search)
	filtered := make([]domain.ResultRecord, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), needle) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func sortRecords(records []domain.ResultRecord, sortBy DashboardSort) error {
	switch sortBy {
	case "", SortByDate:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		})
	case SortByScore:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Score > records[j].Score
		})
	case SortByIQ:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].IQScore > records[j].IQScore
		})
	default:
		return fmt.Errorf("unknown sort %q", sortBy)
	}
	return nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
