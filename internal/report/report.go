package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dermanow/dermanow/internal/campaign"
	"github.com/dermanow/dermanow/internal/order"
)

//go:generate mockgen -source=report.go -destination=report_mock.go -package=report

// Orders lists purchase orders.
type Orders interface {
	List(ctx context.Context, filter order.ListFilter) ([]*order.Order, error)
}

// Campaigns lists fundraising campaigns.
type Campaigns interface {
	ListCampaigns(ctx context.Context, filter campaign.CampaignFilter, activeOnly bool) ([]*campaign.Campaign, error)
}

// FundLine sums the orders paid from one fund source. Amounts in cents.
type FundLine struct {
	FundSource string
	Orders     int
	Awaiting   int64 // pending or approved
	Held       int64 // payment held, shipped or delivered
	Released   int64 // completed
}

type CampaignLine struct {
	Title    string
	Goal     int64
	Raised   int64
	Deadline time.Time
}

// FundUsage shows where a charity's money went.
type FundUsage struct {
	Charity     string
	GeneratedAt time.Time
	Funds       []FundLine
	Campaigns   []CampaignLine
	Rejected    int
}

func (u *FundUsage) Totals() FundLine {
	t := FundLine{FundSource: "Total"}

	for _, f := range u.Funds {
		t.Orders += f.Orders
		t.Awaiting += f.Awaiting
		t.Held += f.Held
		t.Released += f.Released
	}

	return t
}

type Service struct {
	orders    Orders
	campaigns Campaigns
	now       func() time.Time
}

func NewService(orders Orders, campaigns Campaigns) *Service {
	return &Service{orders: orders, campaigns: campaigns, now: time.Now}
}

// FundUsage builds the report for one charity wallet.
func (s *Service) FundUsage(ctx context.Context, charity string) (*FundUsage, error) {
	orders, err := s.orders.List(ctx, order.ListFilter{Party: charity})
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	campaigns, err := s.campaigns.ListCampaigns(ctx, campaign.CampaignFilter{Owner: charity}, false)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}

	u := &FundUsage{Charity: charity, GeneratedAt: s.now()}

	byFund := make(map[string]*FundLine)

	for _, o := range orders {
		if o.CharityAddress != charity {
			continue
		}

		if o.Status == order.StatusRejected {
			u.Rejected++
			continue
		}

		line, ok := byFund[o.FundSource]
		if !ok {
			line = &FundLine{FundSource: o.FundSource}
			byFund[o.FundSource] = line
		}

		line.Orders++

		switch o.Status {
		case order.StatusPending, order.StatusApproved:
			line.Awaiting += o.TotalPrice
		case order.StatusCompleted:
			line.Released += o.TotalPrice
		default:
			line.Held += o.TotalPrice
		}
	}

	for _, line := range byFund {
		u.Funds = append(u.Funds, *line)
	}

	sort.Slice(u.Funds, func(i, j int) bool { return u.Funds[i].FundSource < u.Funds[j].FundSource })

	for _, c := range campaigns {
		u.Campaigns = append(u.Campaigns, CampaignLine{
			Title:    c.Title,
			Goal:     c.Goal,
			Raised:   c.Raised,
			Deadline: c.Deadline,
		})
	}

	return u, nil
}

// FormatCents renders cents as a fixed two-decimal amount.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
