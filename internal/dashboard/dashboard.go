// Package dashboard summarizes the orders collection for the back office.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

const (
	recentCount = 5
	seriesDays  = 7
)

type DayRevenue struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
}

type Summary struct {
	TotalOrders       int                `json:"totalOrders"`
	DeliveredOrders   int                `json:"deliveredOrders"`
	TotalRevenue      float64            `json:"totalRevenue"`
	AverageOrderValue float64            `json:"averageOrderValue"`
	StatusCounts      map[string]int     `json:"statusCounts"`
	RecentOrders      []order.AdminOrder `json:"recentOrders"`
	DailyRevenue      []DayRevenue       `json:"dailyRevenue"`
}

// Compute aggregates orders as of now.
//
// The revenue series is keyed by short weekday name over today-6..today.
// Orders are bucketed by the weekday of their last update, so a delivery
// updated exactly seven days ago lands on today's name.
func Compute(orders []order.AdminOrder, now time.Time) Summary {
	s := Summary{
		TotalOrders:  len(orders),
		StatusCounts: map[string]int{},
		RecentOrders: []order.AdminOrder{},
	}

	days := make([]string, 0, seriesDays)
	byDay := map[string]decimal.Decimal{}
	for i := seriesDays - 1; i >= 0; i-- {
		name := now.AddDate(0, 0, -i).Format("Mon")
		if _, ok := byDay[name]; !ok {
			days = append(days, name)
		}
		byDay[name] = decimal.Zero
	}

	since := now.AddDate(0, 0, -seriesDays)
	revenue := decimal.Zero
	for _, o := range orders {
		status := strings.TrimSpace(o.Status)
		if status == "" {
			status = string(order.StatusNew)
		}
		s.StatusCounts[status]++

		if !order.IsDelivered(status) {
			continue
		}
		total := decimal.NewFromFloat(o.Total)
		s.DeliveredOrders++
		revenue = revenue.Add(total)

		at := o.UpdatedAt
		if at.IsZero() {
			at = o.CreatedAt
		}
		if !at.Before(since) {
			name := at.In(now.Location()).Format("Mon")
			if _, ok := byDay[name]; ok {
				byDay[name] = byDay[name].Add(total)
			}
		}
	}

	s.TotalRevenue = revenue.InexactFloat64()
	if s.DeliveredOrders > 0 {
		s.AverageOrderValue = revenue.Div(decimal.NewFromInt(int64(s.DeliveredOrders))).InexactFloat64()
	}

	for _, d := range days {
		s.DailyRevenue = append(s.DailyRevenue, DayRevenue{Day: d, Revenue: byDay[d].InexactFloat64()})
	}

	byCreated := query.By(func(o order.AdminOrder) int64 { return o.CreatedAt.UnixNano() })
	recent := query.Sort(orders, byCreated, query.Desc)
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	s.RecentOrders = append(s.RecentOrders, recent...)
	return s
}

// Service reads the orders collection once per summary.
type Service struct {
	repo *order.Repository
	now  func() time.Time
}

func NewService(repo *order.Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("dashboard: %w", err)
	}
	return Compute(orders, s.now()), nil
}
