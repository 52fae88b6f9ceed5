package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/wtaconnect/backoffice/internal/period"
	"github.com/wtaconnect/backoffice/internal/regions"
	"golang.org/x/sync/errgroup"
)

// Source is the read side of the order store.
type Source interface {
	Query(ctx context.Context, q Query) ([]Record, error)
}

type TrendPoint struct {
	Date   string `json:"date"`
	Orders int    `json:"orders"`
}

// Slice is one chart series entry.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DashboardResult holds the KPIs of one tenant window.
// AverageProcessingTime is NaN when no issued order has both timestamps.
type DashboardResult struct {
	TotalOrders           int          `json:"totalOrders"`
	SalesVolume           Amount       `json:"salesVolume"`
	AverageProcessingTime float64      `json:"averageProcessingTime"`
	CancellationRate      float64      `json:"cancellationRate"`
	OrdersTrend           []TrendPoint `json:"ordersTrend"`
	StatusDistribution    []Slice      `json:"statusDistribution"`
	RecentOrders          []Order      `json:"recentOrders"`
}

// MarshalJSON renders a NaN average as null.
func (r DashboardResult) MarshalJSON() ([]byte, error) {
	type plain DashboardResult
	out := struct {
		plain
		AverageProcessingTime *float64 `json:"averageProcessingTime"`
	}{plain: plain(r)}
	if !math.IsNaN(r.AverageProcessingTime) {
		out.AverageProcessingTime = &r.AverageProcessingTime
	}
	return json.Marshal(out)
}

// Dashboard computes the order dashboard of a tenant.
type Dashboard struct {
	orders Source
	policy period.Policy
}

func NewDashboard(src Source, policy period.Policy) *Dashboard {
	return &Dashboard{orders: src, policy: policy}
}

// Compute fetches the selected window and the trailing trend window
// concurrently. Either fetch failing fails the whole computation.
func (d *Dashboard) Compute(ctx context.Context, tenantID int64, p period.Period) (*DashboardResult, error) {
	var window, trend []Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := d.orders.Query(gctx, Query{TenantID: tenantID, From: d.policy.LowerBound(p)})
		if err != nil {
			return fmt.Errorf("window orders: %w", err)
		}
		window = rs
		return nil
	})
	g.Go(func() error {
		rs, err := d.orders.Query(gctx, Query{TenantID: tenantID, From: d.policy.TrendLowerBound()})
		if err != nil {
			return fmt.Errorf("trend orders: %w", err)
		}
		trend = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute dashboard: %w", err)
	}
	return Aggregate(window, trend), nil
}

// Aggregate folds the window records into KPIs and builds the trend series from trend.
func Aggregate(window, trend []Record) *DashboardResult {
	counts := map[regions.Region]int{}
	sales := decimal.Zero
	var hours []float64
	projected := make([]Order, 0, len(window))

	for _, r := range window {
		o := Project(r)
		projected = append(projected, o)
		sales = sales.Add(r.Pedido.TotalPedido.Decimal)
		counts[o.Region]++

		if r.Status == StatusNFeIssued {
			if h, ok := r.ProcessingHours(); ok {
				hours = append(hours, h)
			}
		}
	}

	distribution := make([]Slice, 0, 6)
	for _, region := range append(regions.All(), regions.Unknown) {
		distribution = append(distribution, Slice{Name: string(region), Value: counts[region]})
	}

	recent := make([]Order, 0)
	for _, o := range projected {
		if pending(StatusCode(o.StatusProcesso)) {
			recent = append(recent, o)
		}
	}

	return &DashboardResult{
		TotalOrders:           len(window),
		SalesVolume:           Amount{sales},
		AverageProcessingTime: mean(hours),
		CancellationRate:      cancellationRate(0, len(window)),
		OrdersTrend:           Trend(trend),
		StatusDistribution:    distribution,
		RecentOrders:          recent,
	}
}

// Trend counts records per raw display date, ascending by the raw string.
// Labels keep the first five characters ("dd/MM"). Records without a date are skipped.
func Trend(rs []Record) []TrendPoint {
	counts := map[string]int{}
	for _, r := range rs {
		if d := r.TrendDate(); d != "" {
			counts[d]++
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, TrendPoint{Date: prefix(k, 5), Orders: counts[k]})
	}
	return out
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// no status represents a cancelled order yet, so cancelled is always 0
func cancellationRate(cancelled, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(cancelled) / float64(total) * 100
}
