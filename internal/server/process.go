package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"office-stats/internal/excel"
	"office-stats/internal/export"
	"office-stats/internal/models"
	"office-stats/internal/stats"
)

// importRequest describes one uploaded workbook.
type importRequest struct {
	InputPath   string
	Sheet       string
	Standardize bool
}

func (s *Server) processJob(job *Job, req importRequest) {
	log := s.log.With(zap.String("job_id", job.ID))
	defer func() {
		if r := recover(); r != nil {
			log.Error("import panicked", zap.Any("panic", r))
			job.Fail(fmt.Sprintf("Panic: %v", r))
		}
	}()
	defer os.Remove(req.InputPath)

	job.Log(fmt.Sprintf("Processing file: %s", filepath.Base(req.InputPath)))

	f, err := excel.OpenFile(req.InputPath)
	if err != nil {
		s.failJob(log, job, "Could not open workbook", err)
		return
	}
	defer f.Close()

	job.SetProgress(1, 4, fmt.Sprintf("Reading sheet %s...", req.Sheet))
	res, err := excel.ReadOffices(f, req.Sheet, excel.ReadOptions{Standardize: req.Standardize})
	if err != nil {
		s.failJob(log, job, "Could not read offices", err)
		return
	}
	job.Log(fmt.Sprintf("%d offices read.", len(res.Offices)))
	if len(res.Skipped) > 0 {
		job.Log(fmt.Sprintf("Skipped %d rows with invalid numbers: %v", len(res.Skipped), res.Skipped))
	}

	if err := models.Validate(res.Offices); err != nil {
		s.failJob(log, job, "Invalid statistics", err)
		return
	}

	job.SetProgress(2, 4, "Building statistics table...")
	t, err := stats.Build(res.Offices)
	if err != nil {
		s.failJob(log, job, "Could not build table", err)
		return
	}
	if t == nil {
		s.failJob(log, job, "No offices found", eris.Errorf("sheet %s has no office rows", req.Sheet))
		return
	}
	label, _ := stats.MethodLabel(res.Offices)

	job.SetProgress(3, 4, "Writing result files...")
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		s.failJob(log, job, "Could not create output folder", err)
		return
	}
	workbook := job.ID + ".xlsx"
	if err := excel.SaveTable(filepath.Join(s.cfg.OutputDir, workbook), t, excel.DefaultSheet); err != nil {
		s.failJob(log, job, "Could not write workbook", err)
		return
	}
	csvName := job.ID + ".csv"
	payload, err := export.CSV(t)
	if err == nil {
		err = os.WriteFile(filepath.Join(s.cfg.OutputDir, csvName), payload, 0o644)
	}
	if err != nil {
		s.failJob(log, job, "Could not write CSV", err)
		return
	}

	s.jobs.MarkLatest(job.ID)
	job.Finish(&JobResult{
		Offices:     t.Len(),
		Skipped:     res.Skipped,
		MethodLabel: label,
		Sheet:       excel.DefaultSheet,
		Workbook:    workbook,
		CSV:         csvName,
		Table:       t,
	})
	log.Info("import finished", zap.Int("offices", t.Len()), zap.String("method", label))
}

func (s *Server) failJob(log *zap.Logger, job *Job, msg string, err error) {
	log.Warn("import failed", zap.String("reason", msg), zap.Error(err))
	job.Fail(fmt.Sprintf("%s: %v", msg, err))
}
