package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-sales-ledger/internal/database"
	"go-sales-ledger/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	maxToolRounds      = 5
	defaultRecentSales = 5
	maxRecentSales     = 50
)

// Source is the read-only data the assistant may look at.
type Source interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	AggregateTotals(ctx context.Context, r database.DateRange) (*database.SalesTotals, error)
	RecentSales(ctx context.Context, n int) ([]models.Sale, error)
}

// Agent answers admin questions about the catalog and recorded sales.
type Agent struct {
	apiKey string
	model  string
	src    Source
	now    func() time.Time
}

func NewAgent(apiKey, model string, src Source) *Agent {
	return &Agent{apiKey: apiKey, model: model, src: src, now: time.Now}
}

var tools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "check_catalog",
				Description: "Get the full product catalog. Use this to find any product code, name or unit price.",
			},
			{
				Name:        "get_sales_report",
				Description: "Get total sales, cash received, cash deposited, difference and number of sales for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
			{
				Name:        "recent_sales",
				Description: "List the most recent sales with salesperson, plate number and totals.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"count": {Type: genai.TypeInteger, Description: "How many sales to return (max 50)"},
					},
				},
			},
		},
	},
}

// Ask sends the question to Gemini and runs any tool calls it makes.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = tools

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(a.prompt(question)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			out, err := a.runTool(ctx, call.Name, call.Args)
			if err != nil {
				out = map[string]any{"error": err.Error()}
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: out})
		}

		resp, err = session.SendMessage(ctx, replies...)
		if err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

func (a *Agent) prompt(question string) string {
	today := a.now().Format("2006-01-02")
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant of a beverage distributor's sales ledger.
Amounts are in ETB.

RULES:
1. PRICES: If the user asks about a product, its code or its PRICE, call 'check_catalog' and read the JSON.
2. TOTALS: If the user asks for sales, revenue, cash received, cash deposited or differences over a period, call 'get_sales_report'.
3. LATEST: If the user asks about the latest or recent submissions, call 'recent_sales'.
4. You can only read data. Never claim to have changed anything.

USER: %s`, today, question)
}

// runTool executes one tool call against the Source.
func (a *Agent) runTool(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "check_catalog":
		products, err := a.src.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		type item struct {
			Code  string `json:"code"`
			Name  string `json:"name"`
			Price string `json:"price"`
		}
		list := make([]item, 0, len(products))
		for _, p := range products {
			list = append(list, item{Code: p.ProductCode, Name: p.ProductName, Price: p.Price.StringFixed(2)})
		}
		raw, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return map[string]any{"catalog": string(raw)}, nil

	case "get_sales_report":
		start, err1 := time.Parse("2006-01-02", stringArg(args, "start_date"))
		end, err2 := time.Parse("2006-01-02", stringArg(args, "end_date"))
		if err1 != nil || err2 != nil {
			return nil, errors.New("dates must be in YYYY-MM-DD format")
		}
		end = end.Add(24*time.Hour - time.Nanosecond)

		totals, err := a.src.AggregateTotals(ctx, database.DateRange{From: &start, To: &end})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"total_sales":    totals.SumTotalSales.StringFixed(2),
			"cash_received":  totals.SumCashReceived.StringFixed(2),
			"cash_deposited": totals.SumCashDeposited.StringFixed(2),
			"difference":     totals.SumDifference.StringFixed(2),
			"sales_count":    totals.Count,
		}, nil

	case "recent_sales":
		n := defaultRecentSales
		if v, ok := args["count"].(float64); ok && v > 0 {
			n = int(v)
		}
		if n > maxRecentSales {
			n = maxRecentSales
		}
		sales, err := a.src.RecentSales(ctx, n)
		if err != nil {
			return nil, err
		}
		type row struct {
			Date        string `json:"date"`
			Salesperson string `json:"salesperson"`
			Plate       string `json:"plate,omitempty"`
			TotalSales  string `json:"total_sales"`
			Difference  string `json:"difference"`
		}
		rows := make([]row, 0, len(sales))
		for _, s := range sales {
			r := row{
				Date:        s.Date.Format("2006-01-02"),
				Salesperson: s.SalesPerson.Name,
				TotalSales:  s.TotalSales.StringFixed(2),
				Difference:  s.Difference.StringFixed(2),
			}
			if s.PlateNumber != nil {
				r.Plate = s.PlateNumber.Plate
			}
			rows = append(rows, r)
		}
		raw, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sales": string(raw)}, nil
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return "I could not find an answer to that."
}
