package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"opsight/internal/analytics"
)

// WriteCSVReports writes one CSV file per report section into dir, plus a
// plain-text run summary. The directory is created if needed.
func WriteCSVReports(report *analytics.Report, dir string) error {
	if report == nil {
		return fmt.Errorf("no report to write")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, t := range Tables(report) {
		if err := writeCSV(filepath.Join(dir, t.FileName), t); err != nil {
			return fmt.Errorf("write %s: %w", t.FileName, err)
		}
	}
	if err := writeSummary(report, filepath.Join(dir, "run_summary.txt")); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

func writeCSV(path string, t Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeSummary records run identity, per-section row counts and durations,
// discard tallies and diagnostic notes in a human-readable file.
func writeSummary(report *analytics.Report, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Supply-Chain Operational Analytics - Run Summary\n")
	fmt.Fprintf(file, "================================================\n\n")
	fmt.Fprintf(file, "Run ID:    %s\n", report.RunID)
	fmt.Fprintf(file, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(file, "SECTIONS\n--------\n")
	for _, t := range Tables(report) {
		fmt.Fprintf(file, "%-24s %6d rows\n", t.Name, len(t.Rows))
	}
	fmt.Fprintf(file, "\nDURATIONS\n---------\n")
	names := make([]string, 0, len(report.Durations))
	for name := range report.Durations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(file, "%-24s %s\n", name, report.Durations[name])
	}

	fmt.Fprintf(file, "\nDISCARDED ROWS\n--------------\n")
	fmt.Fprintf(file, "unresolved items:        %d\n", report.Discards.UnresolvedItems)
	fmt.Fprintf(file, "invalid items:           %d\n", report.Discards.InvalidItems)
	fmt.Fprintf(file, "orders without customer: %d\n", report.Discards.OrdersWithoutCustomer)
	fmt.Fprintf(file, "items without geo:       %d\n", report.Discards.ItemsWithoutGeo)

	if len(report.Notes) > 0 {
		fmt.Fprintf(file, "\nNOTES\n-----\n")
		noteNames := make([]string, 0, len(report.Notes))
		for name := range report.Notes {
			noteNames = append(noteNames, name)
		}
		sort.Strings(noteNames)
		for _, name := range noteNames {
			fmt.Fprintf(file, "%s: %s\n", name, report.Notes[name])
		}
	}
	return nil
}
