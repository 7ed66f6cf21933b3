package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trackside/internal/allocator"
	"github.com/yourusername/trackside/internal/api"
	"github.com/yourusername/trackside/internal/config"
	"github.com/yourusername/trackside/internal/database"
	"github.com/yourusername/trackside/internal/kelly"
	applog "github.com/yourusername/trackside/internal/logger"
	"github.com/yourusername/trackside/internal/metrics"
	"github.com/yourusername/trackside/internal/models"
	"github.com/yourusername/trackside/internal/repository"
	"github.com/yourusername/trackside/internal/scheduler"
	"github.com/yourusername/trackside/internal/service"
	"github.com/yourusername/trackside/internal/session"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trackside",
	Short: "Pari-mutuel wagering decision engine",
	Long:  `Trackside turns a scored race field into ranked, bankroll-aware wagering recommendations.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			region := os.Getenv("AWS_REGION")
			secretName := os.Getenv("AWS_SECRET_NAME")
			if region == "" || secretName == "" {
				return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
			}
			if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}

		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger = applog.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		metrics.InitRegistry()
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(dayplanCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	recommendCmd.Flags().StringVar(&recommendOpts.fieldFile, "field", "", "Path to JSON file with the scored field")
	recommendCmd.Flags().StringVar(&recommendOpts.track, "track", "", "Track name")
	recommendCmd.Flags().IntVar(&recommendOpts.race, "race", 0, "Race number")
	recommendCmd.Flags().Float64Var(&recommendOpts.bankroll, "bankroll", 0, "Bankroll for Kelly stake sizing (0 skips sizing)")
	recommendCmd.MarkFlagRequired("field")
	recommendCmd.MarkFlagRequired("track")
	recommendCmd.MarkFlagRequired("race")

	dayplanCmd.Flags().StringVar(&dayplanOpts.cardFile, "card", "", "Path to JSON file with the race card verdicts")
	dayplanCmd.Flags().Float64Var(&dayplanOpts.bankroll, "bankroll", 0, "Total bankroll for the day")
	dayplanCmd.Flags().StringVar(&dayplanOpts.style, "style", "", "Risk style: safe, balanced or aggressive (defaults to config)")
	dayplanCmd.MarkFlagRequired("card")
	dayplanCmd.MarkFlagRequired("bankroll")

	sessionCmd.PersistentFlags().StringVar(&sessionOpts.id, "id", "", "Ledger ID (required for all but start)")
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionBetCmd)
	sessionCmd.AddCommand(sessionWinCmd)
	sessionCmd.AddCommand(sessionLossCmd)
	sessionCmd.AddCommand(sessionAdjustCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trackside %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

// --- recommend ---

var recommendOpts struct {
	fieldFile string
	track     string
	race      int
	bankroll  float64
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Analyze one race and print ranked wager recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := readFieldFile(recommendOpts.fieldFile)
		if err != nil {
			return err
		}

		engine := service.NewEngine(&cfg.Engine, logger)
		analysis, err := engine.AnalyzeRace(recommendOpts.track, recommendOpts.race, field)
		if err != nil {
			return err
		}

		printAnalysis(analysis, recommendOpts.bankroll)
		return nil
	},
}

func readFieldFile(path string) (models.Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field file: %w", err)
	}
	var field models.Field
	if err := json.Unmarshal(data, &field); err != nil {
		return nil, fmt.Errorf("failed to parse field file: %w", err)
	}
	return field, nil
}

func printAnalysis(analysis *service.RaceAnalysis, bankroll float64) {
	fmt.Printf("\n%s race %d — verdict: %s (best overlay %.1f%%)\n",
		analysis.TrackName, analysis.RaceNumber, analysis.Verdict, analysis.BestOverlay)
	if analysis.ValuePlay != nil {
		fmt.Printf("Value play: %s\n", *analysis.ValuePlay)
	}
	if len(analysis.Recommendations) == 0 {
		fmt.Println("No plays recommended.")
		return
	}

	var calc *kelly.Calculator
	var sizer *kelly.Sizer
	if bankroll > 0 {
		calc = kelly.NewCalculator(&cfg.Sizing, logger)
		sizer = kelly.NewSizer(&cfg.Sizing, logger)
	}

	fmt.Println()
	sized := make([]models.SizedBet, 0, len(analysis.Recommendations))
	for _, rec := range analysis.Recommendations {
		line := fmt.Sprintf("%2d. [%s] %s | hit %.1f%% | pays %s-%s | EV %+.2f",
			rec.Rank, rec.RiskTier, rec.WindowScript,
			rec.HitProbability,
			session.FormatCurrency(rec.EstimatedPayout.Min),
			session.FormatCurrency(rec.EstimatedPayout.Max),
			rec.ExpectedValue)

		if calc != nil && rec.StakeCost > 0 {
			netOdds := rec.EstimatedPayout.Likely/rec.StakeCost - 1
			result := calc.Evaluate(rec.HitProbability/100, netOdds, bankroll)
			bet := sizer.Size(result)
			sized = append(sized, bet)
			if result.ShouldBet {
				line += fmt.Sprintf(" | stake %s", session.FormatCurrency(bet.BoundedFinalAmount))
			} else {
				line += " | no stake"
			}
		}
		fmt.Println(line)
	}

	if sizer != nil && len(sized) > 0 {
		rebalanced := sizer.RebalanceRace(sized, bankroll)
		total := 0.0
		for _, bet := range rebalanced {
			total += bet.BoundedFinalAmount
		}
		fmt.Printf("\nTotal race exposure after rebalance: %s (cap %.0f%% of bankroll)\n",
			session.FormatCurrency(total), cfg.Sizing.MaxRaceExposure*100)
	}
	fmt.Println()
}

// --- dayplan ---

var dayplanOpts struct {
	cardFile string
	bankroll float64
	style    string
}

var dayplanCmd = &cobra.Command{
	Use:   "dayplan",
	Short: "Allocate a day bankroll across a race card",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(dayplanOpts.cardFile)
		if err != nil {
			return fmt.Errorf("failed to read card file: %w", err)
		}
		var races []models.RaceCardEntry
		if err := json.Unmarshal(data, &races); err != nil {
			return fmt.Errorf("failed to parse card file: %w", err)
		}

		styleName := dayplanOpts.style
		if styleName == "" {
			styleName = cfg.Allocation.Style
		}
		style, err := models.ParseRiskStyle(styleName)
		if err != nil {
			return err
		}

		alloc := allocator.New(&cfg.Allocation, logger)
		plan, err := alloc.Build(dayplanOpts.bankroll, style, races)
		if err != nil {
			return err
		}
		metrics.DayPlansBuiltTotal.Inc()
		applog.NewBetLogger(logger).LogDayPlanBuilt(string(plan.RiskStyle), plan.TotalBankroll, plan.MultiRaceReserve, len(plan.Allocations))

		printPlan(plan)
		return nil
	},
}

func printPlan(plan *allocator.Plan) {
	fmt.Printf("\nDay plan (%s) — bankroll %s\n", plan.RiskStyle, session.FormatCurrency(plan.TotalBankroll))
	fmt.Printf("Multi-race reserve: %s | Single-race pool: %s\n\n",
		session.FormatCurrency(plan.MultiRaceReserve), session.FormatCurrency(plan.SingleRaceBankroll))

	for _, a := range plan.Allocations {
		line := fmt.Sprintf("Race %2d [%7s] %s", a.RaceNumber, a.Verdict, session.FormatCurrency(a.AllocatedBudget))
		if a.ValuePlay != nil {
			line += " — " + *a.ValuePlay
		}
		fmt.Println(line)
	}
	fmt.Println()
}

// --- session ---

var sessionOpts struct {
	id string
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Track the session bankroll ledger",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Open a new session ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedgerRepo(func(ctx context.Context, repo repository.LedgerRepository) error {
			ledger := session.NewLedger(&cfg.Session, repo, logger)
			if err := ledger.Checkpoint(ctx); err != nil {
				return err
			}
			state := ledger.Snapshot()
			fmt.Printf("Started ledger %s at %s\n", state.ID, session.FormatCurrency(state.CurrentBankroll))
			return nil
		})
	},
}

var sessionBetCmd = &cobra.Command{
	Use:   "bet [amount]",
	Short: "Place a bet against the session bankroll",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, ledger *session.Ledger) error {
			state, err := ledger.PlaceBet(ctx, amount)
			if err != nil {
				return err
			}
			fmt.Println(session.FormatLedger(state))
			return nil
		})
	},
}

var sessionWinCmd = &cobra.Command{
	Use:   "win [payout]",
	Short: "Settle the open bet as a win with the given payout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payout, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, ledger *session.Ledger) error {
			state, err := ledger.RecordWin(ctx, payout)
			if err != nil {
				return err
			}
			fmt.Println(session.FormatLedger(state))
			return nil
		})
	},
}

var sessionLossCmd = &cobra.Command{
	Use:   "loss",
	Short: "Settle the open bet as a loss",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, ledger *session.Ledger) error {
			state, err := ledger.RecordLoss(ctx)
			if err != nil {
				return err
			}
			fmt.Println(session.FormatLedger(state))
			return nil
		})
	},
}

var sessionAdjustCmd = &cobra.Command{
	Use:   "adjust [delta]",
	Short: "Deposit (positive) or withdraw (negative) bankroll",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var delta float64
		if _, err := fmt.Sscanf(args[0], "%f", &delta); err != nil {
			return fmt.Errorf("invalid amount %q", args[0])
		}
		return withLedger(func(ctx context.Context, ledger *session.Ledger) error {
			state, err := ledger.AdjustBankroll(ctx, delta)
			if err != nil {
				return err
			}
			fmt.Println(session.FormatLedger(state))
			return nil
		})
	},
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the session ledger summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, ledger *session.Ledger) error {
			state := ledger.Snapshot()
			fmt.Println(session.FormatLedger(state))
			fmt.Printf("Risk of ruin: %.1f%%\n", ledger.RiskOfRuin())
			if state.HasOpenBet() {
				fmt.Printf("Open bet: %s\n", session.FormatCurrency(*state.OpenBetAmount))
			}
			return nil
		})
	},
}

func parseAmount(raw string) (float64, error) {
	var amount float64
	if _, err := fmt.Sscanf(raw, "%f", &amount); err != nil || amount <= 0 {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

func withLedgerRepo(fn func(ctx context.Context, repo repository.LedgerRepository) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !cfg.Session.PersistenceEnabled {
		return fn(ctx, nil)
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	return fn(ctx, repository.NewPostgresLedgerRepository(db))
}

func withLedger(fn func(ctx context.Context, ledger *session.Ledger) error) error {
	if sessionOpts.id == "" {
		return fmt.Errorf("--id is required")
	}
	id, err := uuid.Parse(sessionOpts.id)
	if err != nil {
		return fmt.Errorf("invalid ledger id: %w", err)
	}

	return withLedgerRepo(func(ctx context.Context, repo repository.LedgerRepository) error {
		if repo == nil {
			return fmt.Errorf("session persistence is disabled; enable it to resume ledgers")
		}
		state, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return fn(ctx, session.RestoreLedger(*state, &cfg.Session, repo, logger))
	})
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recommendation HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var db *database.DB
		var ledgerRepo repository.LedgerRepository
		if cfg.Session.PersistenceEnabled {
			var err error
			db, err = database.NewDB(ctx, &cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			ledgerRepo = repository.NewPostgresLedgerRepository(db)
		}

		engine := service.NewEngine(&cfg.Engine, logger)
		alloc := allocator.New(&cfg.Allocation, logger)
		ledger := session.NewLedger(&cfg.Session, ledgerRepo, logger)

		apiCfg := api.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Server:      &cfg.Server,
			MetricsPath: cfg.Metrics.Path,
			Engine:      engine,
			Allocator:   alloc,
			Logger:      logger,
		}
		if db != nil {
			apiCfg.DB = db
		}
		server := api.NewServer(apiCfg)
		if err := server.Start(ctx); err != nil {
			return err
		}

		sched := scheduler.NewScheduler(logger)
		if err := sched.ScheduleCheckpoint(cfg.Scheduler.CheckpointCron, ledger); err != nil {
			return err
		}
		rollover := func(ctx context.Context) error {
			_, err := ledger.Rollover(ctx)
			return err
		}
		if err := sched.ScheduleRollover(cfg.Scheduler.RolloverCron, rollover); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		server.SetReady(true)
		logger.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"version": Version,
		}).Info("Trackside serving")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down")
		server.SetReady(false)
		cancel()
		time.Sleep(500 * time.Millisecond)
		return nil
	},
}
