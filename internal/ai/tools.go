package ai

import (
	"context"
	"fmt"
	"time"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/dashboard"
	"go-pos-ledger/internal/report"
	"go-pos-ledger/internal/utils"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
)

const (
	ToolCheckInventory   = "check_inventory"
	ToolBuildReport      = "build_report"
	ToolDashboardSummary = "dashboard_summary"
)

// Source is every read the assistant's tools may perform. It never writes.
type Source interface {
	dashboard.Source
	report.Source
}

// Toolbox executes the functions the model is allowed to call.
type Toolbox struct {
	src Source
	loc *time.Location
	now func() time.Time
}

func NewToolbox(src Source, loc *time.Location) *Toolbox {
	if loc == nil {
		loc = time.UTC
	}
	return &Toolbox{src: src, loc: loc, now: time.Now}
}

// Declarations describes the tools to the model.
func (t *Toolbox) Declarations() []*genai.FunctionDeclaration {
	kinds := make([]string, len(report.Kinds))
	for i, k := range report.Kinds {
		kinds[i] = string(k)
	}

	return []*genai.FunctionDeclaration{
		{
			Name:        ToolCheckInventory,
			Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Category, Price, Stock or whether it is low on stock.",
		},
		{
			Name:        ToolBuildReport,
			Description: "Build one of the shop reports for an inclusive date range and return its rows.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"kind":       {Type: genai.TypeString, Enum: kinds, Description: "Which report to build"},
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
				},
				Required: []string{"kind", "start_date", "end_date"},
			},
		},
		{
			Name:        ToolDashboardSummary,
			Description: "Get all-time totals: sales, expenses, tax collected, net profit, low stock items and best sellers.",
		},
	}
}

// Call runs one tool. Mistakes the model can fix (bad dates, unknown report)
// come back as an "error" field so the model can retry; anything else is
// returned as an error and ends the conversation.
func (t *Toolbox) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	var (
		out map[string]any
		err error
	)
	switch name {
	case ToolCheckInventory:
		out, err = t.checkInventory(ctx)
	case ToolBuildReport:
		out, err = t.buildReport(ctx, args)
	case ToolDashboardSummary:
		out, err = t.dashboardSummary(ctx)
	default:
		err = errors.Wrapf(apperrors.ErrInvalidInput, "unknown tool %q", name)
	}

	if err != nil && apperrors.UserCorrectable(err) {
		return map[string]any{"error": err.Error()}, nil
	}
	return out, err
}

func (t *Toolbox) checkInventory(ctx context.Context) (map[string]any, error) {
	products, err := t.src.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]map[string]any, len(products))
	for i, p := range products {
		list[i] = map[string]any{
			"id":       p.ID,
			"name":     p.Name,
			"category": p.Category,
			"price":    utils.FormatCurrency(p.Price),
			"stock":    p.Stock,
			"status":   p.StockStatus(),
		}
	}
	return map[string]any{"inventory": list}, nil
}

func (t *Toolbox) buildReport(ctx context.Context, args map[string]any) (map[string]any, error) {
	kind, err := report.ParseKind(stringArg(args, "kind"))
	if err != nil {
		return nil, err
	}
	rng, err := report.ParseRange(stringArg(args, "start_date"), stringArg(args, "end_date"), t.loc)
	if err != nil {
		return nil, err
	}

	r, err := report.Load(ctx, t.src, kind, rng)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(r.Labels))
	for _, row := range r.Table() {
		rows = append(rows, map[string]any{"label": row.Label, "amount": row.Text})
	}
	return map[string]any{"title": r.Title, "header": r.Header, "rows": rows}, nil
}

func (t *Toolbox) dashboardSummary(ctx context.Context) (map[string]any, error) {
	s, err := dashboard.Load(ctx, t.src, t.now(), t.loc)
	if err != nil {
		return nil, err
	}

	lowStock := make([]string, len(s.LowStock))
	for i, p := range s.LowStock {
		lowStock[i] = fmt.Sprintf("%s (%d left)", p.Name, p.Stock)
	}
	top := make([]string, len(s.TopProducts))
	for i, p := range s.TopProducts {
		top[i] = fmt.Sprintf("%s: %s units", p.Name, p.Units.String())
	}

	out := map[string]any{
		"low_stock":    lowStock,
		"top_products": top,
	}
	for k, v := range s.Formatted {
		out[k] = v
	}
	return out, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
