// Command report batch-exports the KPI PDF for one workbook without
// the web UI: parse, resolve, filter, export, write to disk.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"kpidash/internal/dataprocessing"
	"kpidash/internal/exporter"
	"kpidash/internal/kpi"
)

func main() {
	var (
		file     = flag.String("file", "", "KPI workbook to export (.xlsx or .csv)")
		out      = flag.String("out", "", "output PDF path (default: report filename in the current directory)")
		car      = flag.String("car", "", "car selection (default: first car in the file)")
		track    = flag.String("track", kpi.TrackAll, "track selection, or ALL")
		sessions = flag.String("sessions", "", "comma-separated session selection (default: all)")
		drivers  = flag.String("drivers", "", "comma-separated driver selection (default: all)")
		metrics  = flag.String("metrics", "", "comma-separated metrics (default: every candidate metric)")
		groupBy  = flag.String("group-by", string(kpi.RoleSessionDate), "grouping role, or none")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *file == "" {
		logger.Error("missing -file")
		flag.Usage()
		os.Exit(2)
	}
	if err := run(logger, *file, *out, *car, *track, *sessions, *drivers, *metrics, *groupBy); err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, file, out, car, track, sessions, drivers, metrics, groupBy string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var table *dataprocessing.Table
	if strings.EqualFold(filepath.Ext(file), ".csv") {
		table, err = dataprocessing.ParseCSV(f)
	} else {
		table, err = dataprocessing.ParseWorkbook(f)
	}
	if err != nil {
		return err
	}

	mapping, missing := kpi.Resolve(table.Columns, kpi.DefaultRequiredRoles)
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns for roles %v; detected columns: %v",
			missing, table.Columns)
	}

	rows := kpi.Enrich(table, mapping)
	candidates := kpi.CandidateMetrics(table, mapping)
	if len(candidates) == 0 {
		return fmt.Errorf("no plottable metric columns found")
	}

	if car == "" {
		cars := kpi.Distinct(rows, mapping, kpi.RoleCar)
		if len(cars) > 0 {
			car = cars[0]
		}
	}

	selected := candidates
	if metrics != "" {
		selected = splitList(metrics)
		for _, m := range selected {
			if !containsString(candidates, m) {
				return fmt.Errorf("unknown metric %q; candidates: %v", m, candidates)
			}
		}
	}

	role := kpi.Role("")
	if groupBy != "none" {
		role = kpi.Role(groupBy)
		if !containsRole(kpi.Roles, role) {
			return fmt.Errorf("unknown group-by role %q", groupBy)
		}
	}

	view := kpi.Apply(rows, mapping, kpi.Filter{
		Car:      car,
		Track:    track,
		Sessions: splitList(sessions),
		Drivers:  splitList(drivers),
	})
	logger.Info("view assembled",
		slog.String("car", car),
		slog.Int("rows", len(view)),
		slog.Int("metrics", len(selected)))

	report, err := exporter.NewPDFExporter(logger).Export(view, selected, mapping, role, car)
	if err != nil {
		return err
	}

	if out == "" {
		out = report.Filename
	}
	if err := os.WriteFile(out, report.Data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("report written",
		slog.String("path", out),
		slog.Int("bytes", len(report.Data)))
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func containsRole(list []kpi.Role, want kpi.Role) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
