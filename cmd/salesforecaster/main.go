package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	salesforecaster "github.com/aouyang1/go-salesforecaster"
	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/aouyang1/go-salesforecaster/stock"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envDataPath  = "SALESFORECASTER_DATA"
	envModelPath = "SALESFORECASTER_MODEL"
	envConfig    = "SALESFORECASTER_CONFIG"
)

var (
	dataPath   string
	modelPath  string
	configFile string
	verbose    bool
)

func main() {
	// a .env file is optional
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "salesforecaster",
		Short: "Forecast monthly product sales and recommend stock levels",
		Long: `Builds lag, moving average and calendar features from monthly point-of-sale
totals and rolls a pre-trained linear model forward to forecast each product.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", envOr(envDataPath, salesforecaster.DefaultDataPath), "Sales csv with Tahun, Bulan, Nama Item and total_jumlah columns")
	rootCmd.PersistentFlags().StringVarP(&modelPath, "model", "m", envOr(envModelPath, salesforecaster.DefaultModelPath), "Linear model json file")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv(envConfig), "Options json file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(plotCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadOptions() (*salesforecaster.Options, error) {
	if configFile == "" {
		return salesforecaster.NewDefaultOptions(), nil
	}
	return salesforecaster.LoadOptions(configFile)
}

// newSession loads the options, the sales data and optionally the model
func newSession(opt *salesforecaster.Options, withModel bool) (*salesforecaster.Session, error) {
	s := salesforecaster.New(opt)
	if err := s.LoadFile(dataPath); err != nil {
		return nil, err
	}
	for _, w := range s.Report().Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}
	if withModel {
		if err := s.LoadModel(modelPath); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func summaryCmd() *cobra.Command {
	var topN int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show headline statistics of the sales data",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := loadOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("top") {
				opt.TopN = topN
			}
			s, err := newSession(opt, false)
			if err != nil {
				return err
			}
			summary, err := s.Summary()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().IntVar(&topN, "top", salesforecaster.DefaultTopN, "Number of best selling products to list")
	return cmd
}

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Predict every observed month and score the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := loadOptions()
			if err != nil {
				return err
			}
			s, err := newSession(opt, true)
			if err != nil {
				return err
			}
			cur, err := s.PredictCurrent()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cur)
		},
	}
}

func forecastCmd() *cobra.Command {
	var horizon int
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast the months after the last observed month of every product",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := loadOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("horizon") {
				opt.ForecastOptions.Horizon = horizon
			}
			s, err := newSession(opt, true)
			if err != nil {
				return err
			}
			res, err := s.Forecast()
			if err != nil {
				return err
			}
			for _, f := range res.Failures {
				fmt.Fprintf(os.Stderr, "skipped: %v\n", f)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", forecast.DefaultHorizon, "Number of months to forecast (1-12)")
	return cmd
}

func recommendCmd() *cobra.Command {
	var (
		stockFlags   []string
		safetyFactor float64
		horizon      int
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend stock to order for the forecasted months",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := loadOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("safety-factor") {
				opt.StockOptions.SafetyFactor = safetyFactor
			}
			if cmd.Flags().Changed("horizon") {
				opt.ForecastOptions.Horizon = horizon
			}
			current, err := parseStock(stockFlags)
			if err != nil {
				return err
			}
			s, err := newSession(opt, true)
			if err != nil {
				return err
			}
			plan, err := s.Recommend(current)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Plan   any `json:"plan"`
				Totals any `json:"totals"`
			}{plan, plan.Totals()})
		},
	}
	cmd.Flags().StringArrayVar(&stockFlags, "stock", nil, "Current stock as product=quantity, repeatable")
	cmd.Flags().Float64Var(&safetyFactor, "safety-factor", stock.DefaultSafetyFactor, "Safety stock factor (1.0-2.0)")
	cmd.Flags().IntVar(&horizon, "horizon", forecast.DefaultHorizon, "Number of months to forecast (1-12)")
	return cmd
}

// parseStock parses product=quantity pairs
func parseStock(pairs []string) (map[string]float64, error) {
	current := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		idx := strings.LastIndex(pair, "=")
		if idx < 0 {
			return nil, fmt.Errorf("invalid stock %q, expected product=quantity", pair)
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(pair[idx+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stock quantity %q, %w", pair, err)
		}
		current[strings.TrimSpace(pair[:idx])] = qty
	}
	return current, nil
}

func plotCmd() *cobra.Command {
	var (
		out     string
		product string
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot a product forecast or the best selling products to an html file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := loadOptions()
			if err != nil {
				return err
			}
			s, err := newSession(opt, product != "")
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if product == "" {
				err = s.PlotTopProducts(f)
			} else {
				err = s.PlotProduct(f, product)
			}
			if err != nil {
				return err
			}
			slog.Info("wrote plot", "path", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "salesforecast.html", "Output html file")
	cmd.Flags().StringVarP(&product, "product", "p", "", "Product to plot, top products when empty")
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		products []string
		from, to string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Describe the sales history of products over a range of months",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := parseRange(from, to)
			if err != nil {
				return err
			}
			opt, err := loadOptions()
			if err != nil {
				return err
			}
			s, err := newSession(opt, false)
			if err != nil {
				return err
			}
			if _, err := os.Stat(modelPath); err == nil {
				if err := s.LoadModel(modelPath); err != nil {
					slog.Warn("plotting history without predictions", "error", err.Error())
				}
			}

			stats, err := s.Describe(products, rng)
			if err != nil {
				return err
			}
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := s.PlotHistory(f, products, rng); err != nil {
					return err
				}
				slog.Info("wrote plot", "path", out)
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().StringArrayVarP(&products, "product", "p", nil, "Product to include, repeatable, first products by name when empty")
	cmd.Flags().StringVar(&from, "from", "", "First month to include as YYYY-MM")
	cmd.Flags().StringVar(&to, "to", "", "Last month to include as YYYY-MM")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also plot the history to this html file")
	return cmd
}

// parseRange parses optional YYYY-MM bounds, an empty bound leaves that side open
func parseRange(from, to string) (salesdata.Range, error) {
	var rng salesdata.Range
	var err error
	if from != "" {
		if rng.From, err = salesdata.ParsePeriod(from); err != nil {
			return rng, err
		}
	}
	if to != "" {
		if rng.To, err = salesdata.ParsePeriod(to); err != nil {
			return rng, err
		}
	}
	return rng, rng.Validate()
}
