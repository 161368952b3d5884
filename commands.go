package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"office-stats/internal/charts"
	"office-stats/internal/excel"
	"office-stats/internal/export"
	"office-stats/internal/models"
	"office-stats/internal/sample"
	"office-stats/internal/stats"
	"office-stats/internal/table"
)

var (
	flagInput       string
	flagSheet       string
	flagStandardize bool
	flagCSV         string
	flagXLSX        string
	flagLink        bool
	flagOut         string
	flagFormat      string
	flagMethod      string
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Build the office statistics table from a JSON or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		offices, err := readOffices(flagInput, flagSheet, flagStandardize)
		if err != nil {
			return err
		}
		t, err := stats.Build(offices)
		if err != nil {
			return err
		}
		if t == nil {
			zap.L().Warn("no offices in input", zap.String("input", flagInput))
			return nil
		}
		return writeTable(cmd.OutOrStdout(), t)
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render charts",
}

var comparisonCmd = &cobra.Command{
	Use:   "comparison",
	Short: "Bar chart of the average distance per office",
	RunE: func(cmd *cobra.Command, args []string) error {
		offices, err := readOffices(flagInput, flagSheet, flagStandardize)
		if err != nil {
			return err
		}
		t, err := stats.Build(offices)
		if err != nil {
			return err
		}
		return saveChart(charts.Comparison(t))
	},
}

var histogramCmd = &cobra.Command{
	Use:   "histogram",
	Short: "Histogram of a raw distance sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		distances, err := readDistances(flagInput)
		if err != nil {
			return err
		}
		label := flagMethod
		switch strings.ToLower(label) {
		case "", string(models.MethodManhattan), string(models.MethodHaversine):
			label = models.DistanceMethod(strings.ToLower(label)).Label()
		}
		if s := stats.Summarize(distances, label); s != nil {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Min %s Distance (km): %.2f\n", s.MethodLabel, s.Min)
			fmt.Fprintf(out, "Max %s Distance (km): %.2f\n", s.MethodLabel, s.Max)
			fmt.Fprintf(out, "Avg %s Distance (km): %.2f\n", s.MethodLabel, s.Average)
			fmt.Fprintf(out, "Total %s Distance (km): %.2f\n", s.MethodLabel, s.Total)
		}
		return saveChart(charts.Histogram(distances, label))
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the example school register",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeTable(cmd.OutOrStdout(), sample.Get())
	},
}

func init() {
	for _, c := range []*cobra.Command{tableCmd, comparisonCmd, histogramCmd} {
		c.Flags().StringVarP(&flagInput, "input", "i", "", "input file (.json or .xlsx)")
		_ = c.MarkFlagRequired("input")
	}
	for _, c := range []*cobra.Command{tableCmd, comparisonCmd} {
		c.Flags().StringVar(&flagSheet, "sheet", excel.DefaultSheet, "sheet to read from an .xlsx input")
		c.Flags().BoolVar(&flagStandardize, "standardize", false, "fold office name variants")
	}
	for _, c := range []*cobra.Command{tableCmd, sampleCmd} {
		c.Flags().StringVar(&flagCSV, "csv", "", "also write the table as CSV to this path")
		c.Flags().StringVar(&flagXLSX, "xlsx", "", "also write the table as XLSX to this path")
		c.Flags().BoolVar(&flagLink, "link", false, "print an HTML download link instead of CSV")
	}
	for _, c := range []*cobra.Command{comparisonCmd, histogramCmd} {
		c.Flags().StringVarP(&flagOut, "out", "o", "", "image path (.png or .svg)")
		c.Flags().StringVar(&flagFormat, "format", "", "image format, defaults to the --out extension")
		_ = c.MarkFlagRequired("out")
	}
	histogramCmd.Flags().StringVar(&flagMethod, "method", "", "distance method or label (default Haversine)")

	chartCmd.AddCommand(comparisonCmd, histogramCmd)
	rootCmd.AddCommand(tableCmd, chartCmd, sampleCmd)
}

// readOffices loads an offices mapping from JSON or from a workbook sheet.
func readOffices(path, sheet string, standardize bool) (map[string]models.OfficeStatistics, error) {
	var offices map[string]models.OfficeStatistics
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := excel.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		res, err := excel.ReadOffices(f, sheet, excel.ReadOptions{Standardize: standardize})
		if err != nil {
			return nil, err
		}
		if len(res.Skipped) > 0 {
			zap.L().Warn("skipped rows with invalid numbers", zap.Ints("rows", res.Skipped))
		}
		offices = res.Offices
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		if err := json.Unmarshal(raw, &offices); err != nil {
			return nil, eris.Wrapf(err, "decode %s", path)
		}
	}
	if err := models.Validate(offices); err != nil {
		return nil, err
	}
	return offices, nil
}

// readDistances accepts either a bare JSON array or {"distances": [...]}.
func readDistances(path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	var distances []float64
	if err := json.Unmarshal(raw, &distances); err == nil {
		return distances, nil
	}
	var wrapped struct {
		Distances []float64 `json:"distances"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, eris.Wrapf(err, "decode %s", path)
	}
	return wrapped.Distances, nil
}

func writeTable(w io.Writer, t *table.Table) error {
	if flagLink {
		link, err := export.DownloadLink(t, filepath.Base(orDefault(flagCSV, export.DefaultFilename)), "")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, link)
	} else if err := export.WriteCSV(w, t); err != nil {
		return err
	}
	if flagCSV != "" {
		payload, err := export.CSV(t)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagCSV, payload, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", flagCSV)
		}
	}
	if flagXLSX != "" {
		if err := excel.SaveTable(flagXLSX, t, excel.DefaultSheet); err != nil {
			return err
		}
	}
	return nil
}

func saveChart(ch *charts.Chart) error {
	if ch == nil {
		zap.L().Warn("nothing to chart")
		return nil
	}
	format := flagFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(flagOut), ".")
	}
	f, err := charts.ParseFormat(format)
	if err != nil {
		return err
	}

	out, err := os.Create(flagOut)
	if err != nil {
		return eris.Wrapf(err, "create %s", flagOut)
	}
	opts := charts.RenderOptions{Width: cfg.Chart.Width, Height: cfg.Chart.Height, Format: f}
	if err := renderChart(out, ch, opts); err != nil {
		return eris.Wrapf(err, "write %s", flagOut)
	}
	zap.L().Info("chart written", zap.String("path", flagOut), zap.String("title", ch.Title))
	return nil
}

// renderChart renders ch into w and closes it, returning the close error.
func renderChart(w io.WriteCloser, ch *charts.Chart, opts charts.RenderOptions) error {
	if err := ch.Render(w, opts); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
