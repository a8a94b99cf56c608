// Command ops-report loads an order snapshot from CSV files, runs the
// analytics pipeline and writes the five reports as CSV files and a
// combined XLSX workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"opsight/internal/analytics"
	"opsight/internal/config"
	"opsight/internal/dataset"
	"opsight/internal/exporter"
	"opsight/internal/infrastructure"
	"opsight/internal/metrics"
)

func main() {
	dataDir := flag.String("data", "data/snapshot", "directory holding the snapshot CSV files")
	outDir := flag.String("out", "data/reports", "output directory for report files")
	configPath := flag.String("config", "config.yaml", "optional YAML configuration file")
	noWorkbook := flag.Bool("no-xlsx", false, "skip the XLSX workbook")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := dataset.NewLoader(*dataDir, logger).Load(ctx)
	if err != nil {
		logger.Error("Failed to load snapshot", "dir", *dataDir, "error", err)
		os.Exit(1)
	}

	pipeline, err := analytics.NewPipeline(toParams(cfg.Analysis), logger)
	if err != nil {
		logger.Error("Failed to build pipeline", "error", err)
		os.Exit(1)
	}

	report, err := pipeline.Run(ctx, snap)
	if err != nil {
		logger.Error("Analytics run failed", "error", err)
		os.Exit(1)
	}

	if err := exporter.WriteCSVReports(report, *outDir); err != nil {
		logger.Error("Failed to write CSV reports", "error", err)
		os.Exit(1)
	}
	if !*noWorkbook {
		workbookPath := filepath.Join(*outDir, fmt.Sprintf("ops_report_%s.xlsx", time.Now().Format("20060102")))
		if err := exporter.WriteWorkbook(report, workbookPath); err != nil {
			logger.Error("Failed to write workbook", "error", err)
			os.Exit(1)
		}
		logger.Info("Workbook written", "path", workbookPath)
	}

	reg := metrics.NewRegistry()
	reg.ObserveReport(report)
	reg.LogSummary(logger)

	printHighlights(report)
	logger.Info("Reports written", "dir", *outDir, "run_id", report.RunID)
}

func toParams(cfg config.AnalysisConfig) analytics.Params {
	return analytics.Params{
		MinOrderCountForEOQ:     cfg.MinOrderCountForEOQ,
		HoldingCostFraction:     cfg.HoldingCostFraction,
		ServiceLevelZ:           cfg.ServiceLevelZ,
		MinDelayDays:            cfg.MinDelayDays,
		ChurnRiskCutoff:         cfg.ChurnRiskCutoff,
		ClusterRoundingDecimals: cfg.ClusterRoundingDecimals,
		ClusterTopNVolume:       cfg.ClusterTopNVolume,
		ClusterTopNCost:         cfg.ClusterTopNCost,
		MinCoPurchaseCount:      cfg.MinCoPurchaseCount,
	}
}

// printHighlights writes the head of each ranking to stdout for a quick
// operator read; the full tables live in the export files.
func printHighlights(report *analytics.Report) {
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "\nTOP REORDER PRIORITIES")
	fmt.Fprintln(tw, "product\tannual demand\treorder point\tsafety stock")
	for i, r := range report.Inventory {
		if i == 10 {
			break
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.0f\t%.0f\n", r.ProductID, r.AnnualDemand, r.ReorderPoint, r.SafetyStock)
	}

	fmt.Fprintln(tw, "\nHIGH-RISK SELLERS")
	fmt.Fprintln(tw, "seller\tdelayed\tchurned\tchurn prob\tflag")
	for i, r := range report.SellerRisk {
		if i == 10 {
			break
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%s\n", r.SellerID, r.DelayedOrders, r.ChurnedOrders, r.ChurnProbability, r.RiskFlag)
	}

	fmt.Fprintln(tw, "\nDEMAND HOTSPOTS")
	fmt.Fprintln(tw, "lat\tlng\titem volume\tshipping cost")
	for _, r := range report.GeoClusters.TopByVolume {
		fmt.Fprintf(tw, "%v\t%v\t%d\t%.2f\n", r.Latitude, r.Longitude, r.TotalOrders, r.TotalShippingCost)
	}

	tw.Flush()
}
