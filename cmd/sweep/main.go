// sweep is a one-shot driver that prices the certificate over a grid of
// (valuation date, lookback window) pairs. The sweep orchestration lives
// here, outside the core: the engine only ever prices one pair at a time.
package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"CertSentinel/internal/engine"
	"CertSentinel/internal/loader"
	"CertSentinel/internal/model"
	"CertSentinel/internal/payoff"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var flags struct {
	pricesCSV     string
	ratesCSV      string
	dates         []string
	maturity      string
	windows       []int
	paths         int
	antithetic    bool
	dt            float64
	seed          int64
	workers       int
	payoffType    string
	initialFixing float64
	barrier       float64
	participation float64
	denomination  float64
	strike        float64
}

func main() {
	root := &cobra.Command{
		Use:   "sweep",
		Short: "Price a certificate over a grid of valuation dates and lookback windows",
		RunE:  run,
	}

	root.Flags().StringVar(&flags.pricesCSV, "prices", "", "historical price CSV (Date, Adjusted Close)")
	root.Flags().StringVar(&flags.ratesCSV, "rates", "", "yield curve CSV (Date, Interest Rate)")
	root.Flags().StringSliceVar(&flags.dates, "dates", nil, "valuation dates (default: last observation)")
	root.Flags().StringVar(&flags.maturity, "maturity", "", "maturity date")
	root.Flags().IntSliceVar(&flags.windows, "windows", []int{21, 63, 252}, "lookback windows in trading days")
	root.Flags().IntVar(&flags.paths, "paths", 100000, "simulated paths per valuation")
	root.Flags().BoolVar(&flags.antithetic, "antithetic", true, "use antithetic variates")
	root.Flags().Float64Var(&flags.dt, "dt", 1.0/252, "year fraction per step")
	root.Flags().Int64Var(&flags.seed, "seed", -1, "random seed (-1 for fresh entropy)")
	root.Flags().IntVar(&flags.workers, "workers", 0, "simulation workers (0 = GOMAXPROCS)")
	root.Flags().StringVar(&flags.payoffType, "payoff", "bonus", "payoff: bonus, outperformance, call or put")
	root.Flags().Float64Var(&flags.initialFixing, "initial", 0, "initial fixing level")
	root.Flags().Float64Var(&flags.barrier, "barrier", 0, "bonus barrier level")
	root.Flags().Float64Var(&flags.participation, "participation", 1.5, "participation rate")
	root.Flags().Float64Var(&flags.denomination, "denomination", 1000, "note denomination")
	root.Flags().Float64Var(&flags.strike, "strike", 0, "strike for call/put payoffs")

	must(root.MarkFlagRequired("prices"))
	must(root.MarkFlagRequired("rates"))
	must(root.MarkFlagRequired("maturity"))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func must(err error) {
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	series, err := loader.LoadPriceSeries(flags.pricesCSV)
	if err != nil {
		return err
	}
	curve, err := loader.LoadRateCurve(flags.ratesCSV)
	if err != nil {
		return err
	}
	maturity, err := time.Parse(dateLayout, flags.maturity)
	if err != nil {
		return fmt.Errorf("parse maturity: %w", err)
	}

	dates := make([]time.Time, 0, len(flags.dates))
	if len(flags.dates) == 0 {
		dates = append(dates, series.Last().Date)
	}
	for _, d := range flags.dates {
		date, err := time.Parse(dateLayout, d)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", d, err)
		}
		dates = append(dates, date)
	}

	ev, err := buildPayoff(maturity)
	if err != nil {
		return err
	}

	var seed *uint64
	if flags.seed >= 0 {
		s := uint64(flags.seed)
		seed = &s
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tWINDOW\tSIGMA\tRATE\tSTEPS\tVALUE\tSTDERR")
	for _, date := range dates {
		for _, window := range flags.windows {
			est, err := engine.Price(series, curve, ev, engine.Request{
				ValuationDate: date,
				MaturityDate:  maturity,
				Window:        window,
				Dt:            flags.dt,
				Paths:         flags.paths,
				Antithetic:    flags.antithetic,
				Seed:          seed,
				Workers:       flags.workers,
			})
			if err != nil {
				return fmt.Errorf("%s M=%d: %w", date.Format(dateLayout), window, err)
			}
			fmt.Fprintf(w, "%s\t%d\t%.4f\t%.4f\t%d\t%.2f\t%.2f\n",
				date.Format(dateLayout), window, est.Sigma, est.Rate, est.Steps, est.Value, est.StdErr)
		}
	}
	return w.Flush()
}

func buildPayoff(maturity time.Time) (payoff.Evaluator, error) {
	terms := model.CertificateTerms{
		InitialFixing: flags.initialFixing,
		Barrier:       flags.barrier,
		Participation: flags.participation,
		Denomination:  flags.denomination,
		Maturity:      maturity,
	}
	switch flags.payoffType {
	case "bonus":
		if terms.InitialFixing <= 0 || terms.Barrier <= 0 {
			return nil, fmt.Errorf("bonus payoff requires --initial and --barrier")
		}
		return payoff.BonusCertificate{Terms: terms}, nil
	case "outperformance":
		if terms.InitialFixing <= 0 {
			return nil, fmt.Errorf("outperformance payoff requires --initial")
		}
		return payoff.Outperformance{Terms: terms}, nil
	case "call":
		if flags.strike <= 0 {
			return nil, fmt.Errorf("call payoff requires --strike")
		}
		return payoff.VanillaCall{Strike: flags.strike}, nil
	case "put":
		if flags.strike <= 0 {
			return nil, fmt.Errorf("put payoff requires --strike")
		}
		return payoff.VanillaPut{Strike: flags.strike}, nil
	default:
		return nil, fmt.Errorf("unknown payoff %q", flags.payoffType)
	}
}
