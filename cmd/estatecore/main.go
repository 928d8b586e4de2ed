// Command estatecore manages a real-estate catalog persisted through the
// configured storage driver: it imports flat CSV records into the unit
// hierarchy, exports the hierarchy back out, and prints a catalog report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"estatecore/internal/core"
)

var exitFunc = os.Exit

func main() {
	importPath := flag.String("import", "", "import flat CSV records from the given file")
	exportPath := flag.String("export", "", "export the catalog as flat CSV records to the given file")
	report := flag.Bool("report", false, "print the catalog hierarchy with aggregate area and price")
	flag.Parse()

	if *importPath == "" && *exportPath == "" && !*report {
		flag.Usage()
		exitFunc(2)
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "estatecore: init logger: %v\n", err)
		exitFunc(1)
		return
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), logger, *importPath, *exportPath, *report); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "estatecore: %v\n", err)
		exitFunc(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, importPath, exportPath string, report bool) error {
	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	svc := core.NewService(store, core.WithLogger(logger), core.WithMetricsRecorder(metrics))

	if importPath != "" {
		if err := runImport(ctx, svc, importPath); err != nil {
			return err
		}
	}
	if exportPath != "" {
		if err := runExport(ctx, svc, exportPath); err != nil {
			return err
		}
	}
	if report {
		if err := runReport(ctx, svc); err != nil {
			return err
		}
	}
	return nil
}

func runImport(ctx context.Context, svc *core.Service, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	forest, skipped, res, err := svc.ImportCSV(ctx, f)
	if err != nil {
		printViolations(res)
		return fmt.Errorf("import %s: %w", path, err)
	}
	for _, diag := range skipped {
		fmt.Printf("skipped: %v\n", diag)
	}
	printViolations(res)
	fmt.Printf("imported %d unit trees from %s (%d records skipped)\n", len(forest), path, len(skipped))
	return nil
}

func runExport(ctx context.Context, svc *core.Service, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := svc.ExportCSV(ctx, f); err != nil {
		f.Close()
		return fmt.Errorf("export to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Printf("exported catalog to %s\n", path)
	return nil
}

func runReport(ctx context.Context, svc *core.Service) error {
	units, err := svc.ListUnits(ctx)
	if err != nil {
		return fmt.Errorf("list units: %w", err)
	}
	if len(units) == 0 {
		fmt.Println("catalog is empty")
		return nil
	}
	for _, unit := range units {
		printUnit(unit, 0)
	}
	return nil
}

func printUnit(unit core.Unit, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s %s %s", indent, unit.Address().FileString(), unit.Kind(), unit.Status())
	if area, err := unit.Area(); err != nil {
		line += fmt.Sprintf(" (no area: %v)", err)
	} else {
		line += fmt.Sprintf(" area=%.2f", area)
	}
	if price, err := unit.TotalPrice(); err != nil {
		line += fmt.Sprintf(" (no price: %v)", err)
	} else {
		line += fmt.Sprintf(" price=%.2f", price)
	}
	fmt.Println(line)
	for _, child := range unit.Children() {
		printUnit(child, depth+1)
	}
}

func printViolations(res core.Result) {
	for _, v := range res.Violations {
		fmt.Printf("rule %s [%s]: %s (%s %s)\n", v.Rule, v.Severity, v.Message, v.Entity, v.EntityID)
	}
}
