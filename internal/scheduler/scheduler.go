package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"CertSentinel/internal/calculator"
	"CertSentinel/internal/engine"
	"CertSentinel/internal/model"
	"CertSentinel/internal/notifier"
	"CertSentinel/internal/payoff"
	"CertSentinel/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Settings carries the simulation parameters the scheduled tasks price with.
type Settings struct {
	Window       int
	Dt           float64
	Paths        int
	Antithetic   bool
	Workers      int
	Seed         *uint64
	SweepWindows []int
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Series   *model.PriceSeries
	Curve    *model.RateCurve
	Terms    model.CertificateTerms
	Payoff   payoff.Evaluator
	Settings Settings
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, series *model.PriceSeries, curve *model.RateCurve,
	terms model.CertificateTerms, ev payoff.Evaluator, settings Settings,
	tn *notifier.TelegramNotifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Series:   series,
		Curve:    curve,
		Terms:    terms,
		Payoff:   ev,
		Settings: settings,
		Notifier: tn,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// RegisterAll registers the daily revaluation and the weekly window sweep.
func (s *Scheduler) RegisterAll(dailyCron, weeklyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyValuation); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(weeklyCron, s.weeklySweep); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunDailyNow executes the daily valuation immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyValuation()
}

// valuationDate is the most recent observation; the estimation window sits
// strictly before it.
func (s *Scheduler) valuationDate() time.Time {
	return s.Series.Last().Date
}

func (s *Scheduler) request(window int) engine.Request {
	return engine.Request{
		ValuationDate: s.valuationDate(),
		MaturityDate:  s.Terms.Maturity,
		Window:        window,
		Dt:            s.Settings.Dt,
		Paths:         s.Settings.Paths,
		Antithetic:    s.Settings.Antithetic,
		Seed:          s.Settings.Seed,
		Workers:       s.Settings.Workers,
	}
}

func (s *Scheduler) dailyValuation() {
	log.Println("[INFO] running daily valuation")
	est, err := engine.Price(s.Series, s.Curve, s.Payoff, s.request(s.Settings.Window))
	if err != nil {
		log.Printf("[ERROR] daily valuation: %v", err)
		s.trySend(fmt.Sprintf("❌ daily valuation failed: %v", err))
		return
	}

	report := notifier.FormatValuationReport(s.Terms, s.Payoff.Name(), s.valuationDate(), est)
	s.trySend(report)
	s.record(est, "DAILY")
}

func (s *Scheduler) weeklySweep() {
	log.Println("[INFO] running weekly window sweep")
	estimates := make([]*model.PriceEstimate, 0, len(s.Settings.SweepWindows))
	for _, window := range s.Settings.SweepWindows {
		est, err := engine.Price(s.Series, s.Curve, s.Payoff, s.request(window))
		if err != nil {
			log.Printf("[ERROR] sweep window %d: %v", window, err)
			continue
		}
		estimates = append(estimates, est)
		s.record(est, "SWEEP")
	}
	if len(estimates) == 0 {
		s.trySend("❌ window sweep produced no estimates")
		return
	}
	s.trySend(notifier.FormatSweepReport(s.valuationDate(), estimates))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/value":
		s.dailyValuation()
		return ""
	case "/sweep":
		s.weeklySweep()
		return ""
	case "/vol":
		return s.volReport()
	case "/history":
		records, err := s.Recorder.Recent(10)
		if err != nil {
			return fmt.Sprintf("history unavailable: %v", err)
		}
		return notifier.FormatHistory(records)
	default:
		return "Commands:\n• /value — revalue the certificate now\n• /sweep — σ and price per lookback window\n• /vol — volatility estimates only\n• /history — recent valuations"
	}
}

func (s *Scheduler) volReport() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("σ estimates | %s\n", s.valuationDate().Format("2006-01-02")))
	for _, window := range s.Settings.SweepWindows {
		vol, err := calculator.EstimateVolatility(s.Series, s.valuationDate(), window, s.Settings.Dt)
		if err != nil {
			b.WriteString(fmt.Sprintf("  M=%-4d unavailable: %v\n", window, err))
			continue
		}
		b.WriteString(fmt.Sprintf("  M=%-4d σ=%.4f\n", window, vol.Sigma))
	}
	return b.String()
}

func (s *Scheduler) record(est *model.PriceEstimate, trigger string) {
	if err := s.Recorder.RecordValuation(&recorder.ValuationRecord{
		ValuationDate: s.valuationDate(),
		MaturityDate:  s.Terms.Maturity,
		Window:        est.Window,
		Sigma:         est.Sigma,
		Rate:          est.Rate,
		Steps:         est.Steps,
		Paths:         est.Paths,
		Antithetic:    s.Settings.Antithetic,
		Payoff:        s.Payoff.Name(),
		Value:         est.Value,
		StdErr:        est.StdErr,
		Trigger:       trigger,
	}); err != nil {
		log.Printf("[ERROR] record valuation: %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
