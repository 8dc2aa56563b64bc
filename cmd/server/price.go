package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AurifyAE/Honor-TV-View/internal/display"
	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/AurifyAE/Honor-TV-View/internal/pipeline"
	"github.com/AurifyAE/Honor-TV-View/internal/pricing"
	"github.com/AurifyAE/Honor-TV-View/internal/spotrate"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price a commodities file against fixed quotes and print the board once",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		file, _ := flags.GetString("file")
		peg, _ := flags.GetFloat64("peg")
		currency, _ := flags.GetString("currency")

		rates, err := spotrate.NewFileSource(file).Load(cmd.Context(), "offline")
		if err != nil {
			return err
		}

		svc := pipeline.NewService(pipeline.Options{
			Engine: pricing.NewEngine(peg),
			Rates:  rates,
		})
		for _, sym := range []string{models.SymbolGold, models.SymbolSilver} {
			tick, ok := flagTick(cmd, sym)
			if ok {
				svc.Store().ApplyTick(tick)
			}
		}

		board := display.NewBoard(os.Stdout, "PRICE CHECK", currency)
		if err := board.Render(svc.Frame(time.Now())); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		return nil
	},
}

func init() {
	flags := priceCmd.Flags()
	flags.String("file", "commodities.yaml", "YAML commodities file")
	flags.Float64("peg", pricing.DefaultCurrencyPeg, "currency peg")
	flags.String("currency", "AED", "settlement currency label")
	flags.Float64("gold-bid", 0, "GOLD bid per troy ounce")
	flags.Float64("gold-ask", 0, "GOLD ask per troy ounce")
	flags.Float64("silver-bid", 0, "SILVER bid per troy ounce")
	flags.Float64("silver-ask", 0, "SILVER ask per troy ounce")
}

// flagTick builds a tick from --<metal>-bid/--<metal>-ask. Unset flags are
// left out so the quote keeps its zero value.
func flagTick(cmd *cobra.Command, symbol string) (models.Tick, bool) {
	prefix := "gold"
	if symbol == models.SymbolSilver {
		prefix = "silver"
	}
	tick := models.Tick{Symbol: symbol, ReceivedAt: time.Now()}
	flags := cmd.Flags()
	if flags.Changed(prefix + "-bid") {
		v, _ := flags.GetFloat64(prefix + "-bid")
		tick.Bid = models.Float(v)
	}
	if flags.Changed(prefix + "-ask") {
		v, _ := flags.GetFloat64(prefix + "-ask")
		tick.Ask = models.Float(v)
	}
	return tick, tick.HasPrices()
}
