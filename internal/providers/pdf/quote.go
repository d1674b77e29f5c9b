package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type QuoteData struct {
	OrgName      string
	OrgAddress   string
	OrgEmail     string
	QuoteNumber  string
	IssueDate    string
	ValidUntil   string

	CustomerName    string
	CustomerAddress string
	CustomerEmail   string

	SystemSizeKwp    string
	PanelCount       int
	AnnualProduction string
	DataSource       string

	Lines []QuoteLine

	TotalCost     string
	AnnualSavings string
	GrantsTotal   string
	NetCost       string
	PaybackNote   string
}

type QuoteLine struct {
	Description string
	Qty         int
	UnitPrice   string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateQuote(ctx context.Context, quote QuoteData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Solar installation quote", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Quote number: "+quote.QuoteNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+quote.IssueDate, props.Text{Top: 4}),
			text.New("Valid until: "+quote.ValidUntil, props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(40,
		col.New(6).Add(
			text.New(quote.OrgName, props.Text{Style: fontstyle.Bold}),
			text.New(quote.OrgAddress, props.Text{Top: 5}),
			text.New(quote.OrgEmail, props.Text{Top: 20}),
		),
		col.New(6).Add(
			text.New("Prepared for", props.Text{Style: fontstyle.Bold}),
			text.New(quote.CustomerName, props.Text{Top: 5}),
			text.New(quote.CustomerAddress, props.Text{Top: 9}),
			text.New(quote.CustomerEmail, props.Text{Top: 25}),
		),
	)

	// System summary
	m.AddRow(25,
		col.New(12).Add(
			text.New("Proposed system", props.Text{Style: fontstyle.Bold, Size: 12}),
			text.New(fmt.Sprintf("%s kWp, %d panels", quote.SystemSizeKwp, quote.PanelCount), props.Text{Top: 6}),
			text.New("Estimated annual production: "+quote.AnnualProduction+" kWh ("+quote.DataSource+")", props.Text{Top: 10}),
		),
	)

	// Table header
	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range quote.Lines {
		m.AddRow(15,
			text.NewCol(6, line.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", line.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total cost", props.Text{Size: 9}),
		text.NewCol(2, quote.TotalCost, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Grants", props.Text{Size: 9}),
		text.NewCol(2, quote.GrantsTotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Net cost", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, quote.NetCost, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(15,
		text.NewCol(12, "Estimated annual savings: "+quote.AnnualSavings, props.Text{Size: 10, Top: 5}),
	)
	if quote.PaybackNote != "" {
		m.AddRow(10,
			text.NewCol(12, quote.PaybackNote, props.Text{Size: 9}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
