package notifier

import (
	"fmt"
	"strings"
	"time"

	"CertSentinel/internal/model"
	"CertSentinel/internal/recorder"
)

// FormatValuationReport formats a single pricing run into a Telegram message.
func FormatValuationReport(terms model.CertificateTerms, payoffName string, valuationDate time.Time, est *model.PriceEstimate) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>CertSentinel valuation</b> | %s\n\n", valuationDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Payoff: %s\n", payoffName))
	b.WriteString(fmt.Sprintf("Initial fixing: %.2f | Barrier: %.2f\n", terms.InitialFixing, terms.Barrier))
	b.WriteString(fmt.Sprintf("Participation: %.2f | Denomination: %.0f\n", terms.Participation, terms.Denomination))
	b.WriteString(fmt.Sprintf("Maturity: %s (%d steps)\n\n", terms.Maturity.Format("2006-01-02"), est.Steps))

	b.WriteString("📈 <b>Model inputs:</b>\n")
	b.WriteString(fmt.Sprintf("  σ (window %d): %.4f\n", est.Window, est.Sigma))
	b.WriteString(fmt.Sprintf("  risk-free rate: %.4f\n", est.Rate))
	b.WriteString(fmt.Sprintf("  paths: %d\n\n", est.Paths))

	b.WriteString(fmt.Sprintf("💰 <b>Fair value:</b> %.2f ± %.2f (1 s.e.)\n", est.Value, est.StdErr))
	pctOfPar := est.Value / terms.Denomination * 100
	b.WriteString(fmt.Sprintf("   %.2f%% of denomination\n", pctOfPar))

	return b.String()
}

// FormatSweepReport formats the weekly lookback-window sweep.
func FormatSweepReport(valuationDate time.Time, estimates []*model.PriceEstimate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧮 <b>Window sweep</b> | %s\n\n", valuationDate.Format("2006-01-02")))
	for _, est := range estimates {
		b.WriteString(fmt.Sprintf("  M=%-4d σ=%.4f → %.2f ± %.2f\n", est.Window, est.Sigma, est.Value, est.StdErr))
	}
	b.WriteString("\nSpread across windows reflects calibration sensitivity, not market risk.")
	return b.String()
}

// FormatHistory formats recent valuation records for the /history command.
func FormatHistory(records []recorder.ValuationRecord) string {
	if len(records) == 0 {
		return "No valuations recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent valuations</b>\n\n")
	for _, rec := range records {
		b.WriteString(fmt.Sprintf("%s  %s  M=%d  %.2f ± %.2f  [%s]\n",
			rec.RecordedAt.Format("01-02 15:04"), rec.ValuationDate.Format("2006-01-02"),
			rec.Window, rec.Value, rec.StdErr, rec.Trigger))
	}
	return b.String()
}
