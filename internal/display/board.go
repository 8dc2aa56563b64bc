package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/AurifyAE/Honor-TV-View/internal/pipeline"
	"github.com/AurifyAE/Honor-TV-View/internal/pricing"
)

const clearScreen = "\033[H\033[2J"

// Board renders pipeline frames as a text rate board.
type Board struct {
	Out      io.Writer
	Title    string
	Currency string // settlement currency label, e.g. "AED"
	Clear    bool   // redraw in place instead of scrolling

	printer *message.Printer
}

func NewBoard(out io.Writer, title, currency string) *Board {
	return &Board{
		Out:      out,
		Title:    title,
		Currency: strings.ToUpper(currency),
		printer:  message.NewPrinter(language.English),
	}
}

// Render writes one full frame.
func (b *Board) Render(f pipeline.Frame) error {
	sb := &strings.Builder{}
	if b.Clear {
		sb.WriteString(clearScreen)
	}

	sb.WriteString(b.header(f))
	sb.WriteString("\n")
	if f.LimitExceeded {
		sb.WriteString("*** SCREEN LIMIT EXCEEDED - contact your administrator ***\n")
	}
	sb.WriteString("\n")

	b.spotTable(sb, f.Spot)
	sb.WriteString("\n")
	b.commodityTable(sb, f.Items)

	_, err := io.WriteString(b.Out, sb.String())
	return err
}

// Draw renders f and discards write errors, matching pipeline.Options.OnFrame.
func (b *Board) Draw(f pipeline.Frame) {
	_ = b.Render(f)
}

func (b *Board) header(f pipeline.Frame) string {
	status := "FEED LIVE"
	if !f.FeedConnected {
		status = "FEED OFFLINE"
	}
	at := f.At
	return fmt.Sprintf("%s  %s  %s  %s  [%s]",
		b.Title,
		at.Format("15:04"),
		strings.ToUpper(at.Weekday().String()),
		strings.ToUpper(at.Format("02 Jan 2006")),
		status,
	)
}

func (b *Board) spotTable(w io.Writer, spot []pipeline.SpotView) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Spot", "Bid", "Ask", "Low", "High"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)

	for _, s := range spot {
		if !s.Known {
			table.Append([]string{s.Symbol, "--", "--", "--", "--"})
			continue
		}
		q := s.Quote
		table.Append([]string{
			s.Symbol,
			b.money(q.Bid, 2) + arrow(q.BidDirection),
			b.money(q.Ask, 2),
			b.money(q.Low, 2),
			b.money(q.High, 2),
		})
	}
	table.Render()
}

func (b *Board) commodityTable(w io.Writer, items []pricing.PricedLineItem) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Commodity", "Unit", "Buy " + b.Currency, "Sell " + b.Currency})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)

	for _, it := range items {
		places := 0
		if pricing.NormalizeUnit(it.Item.Weight) == pricing.UnitGram {
			places = 2
		}
		table.Append([]string{
			ItemLabel(it),
			UnitLabel(it.Item),
			b.money(it.BuyPrice, places),
			b.money(it.SellPrice, places),
		})
	}
	table.Render()
}

func (b *Board) money(v float64, places int) string {
	if places == 2 {
		return b.printer.Sprintf("%.2f", v)
	}
	return b.printer.Sprintf("%.0f", v)
}

// ItemLabel is the board name of a row: the display name followed by the
// purity code unless the metal hides it.
func ItemLabel(it pricing.PricedLineItem) string {
	if !pricing.ShowPurity(it.Item.Metal) || it.Item.Purity <= 0 {
		return it.DisplayName
	}
	return it.DisplayName + " " + strconv.FormatFloat(it.Item.Purity.Float64(), 'f', -1, 64)
}

// UnitLabel renders quantity and unit, e.g. "10 GM" or "1 TTB".
func UnitLabel(item models.CommodityLineItem) string {
	qty := pricing.ResolveQuantity(item.Unit.Float64())
	unit := pricing.NormalizeUnit(item.Weight)
	if unit == "" {
		unit = pricing.UnitGram
	}
	return strconv.FormatFloat(qty, 'f', -1, 64) + " " + unit
}

func arrow(d models.Direction) string {
	switch d {
	case models.DirectionUp:
		return " ▲"
	case models.DirectionDown:
		return " ▼"
	}
	return ""
}
