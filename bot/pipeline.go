package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"discord-analyzer/analyzer"
	"discord-analyzer/database"
	"discord-analyzer/metrics"
	"discord-analyzer/models"
	"discord-analyzer/scanner"
	"discord-analyzer/utils"
)

// ErrScanRunning is returned when a scan is requested while another one is
// still in progress.
var ErrScanRunning = errors.New("a scan is already running")

// Pipeline scans a guild, aggregates the scan and publishes the result.
type Pipeline struct {
	Store    database.Store
	Scanner  *scanner.Scanner
	Options  analyzer.Options
	Registry *Registry
	// ExportDir, when set, also receives the scan and analysis as JSON files.
	ExportDir string

	running sync.Mutex
}

// Result summarizes one pipeline run.
type Result struct {
	Server   string
	Channels int
	Added    int
	Messages int
	Snapshot database.Snapshot
}

// Run scans guildID and replaces its analysis. An update continues from the
// stored scan; full starts from nothing. A scan that failed on some channels
// is still stored and analyzed, and its error is returned with the result.
func (p *Pipeline) Run(ctx context.Context, guildID string, full bool) (Result, error) {
	if !p.running.TryLock() {
		return Result{}, ErrScanRunning
	}
	defer p.running.Unlock()

	var prev *models.Scan
	if !full {
		var err error
		prev, err = p.Store.LatestScan(ctx, guildID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return Result{}, fmt.Errorf("load previous scan: %w", err)
		}
	}
	before := 0
	if prev != nil {
		before = prev.MessageCount()
	}

	mode := "full"
	if prev != nil {
		mode = "update"
	}
	utils.Info("scanner", "scan started", fmt.Sprintf("guild %s (%s)", guildID, mode))

	scan, scanErr := p.Scanner.Scan(ctx, guildID, prev)
	if scan == nil {
		metrics.ObserveScan(0, scanErr)
		utils.Error("scanner", "scan failed", scanErr.Error())
		return Result{}, scanErr
	}
	res := Result{Server: scan.Server.Name, Channels: len(scan.Channels), Messages: scan.MessageCount()}
	res.Added = res.Messages - before
	metrics.ObserveScan(res.Added, scanErr)

	if _, err := p.Store.SaveScan(ctx, guildID, scan); err != nil {
		return res, fmt.Errorf("save scan: %w", err)
	}

	a, err := p.analyze(scan)
	if err != nil {
		return res, err
	}
	res.Snapshot, err = p.Store.SaveAnalysis(ctx, guildID, a)
	if err != nil {
		return res, fmt.Errorf("save analysis: %w", err)
	}
	p.Registry.Set(guildID, a)

	if p.ExportDir != "" {
		if err := p.export(guildID, scan, a); err != nil {
			log.Printf("Export of guild %s failed: %v", guildID, err)
		}
	}

	details := fmt.Sprintf("%s: %d channels, %d new messages, %d total", res.Server, res.Channels, res.Added, res.Messages)
	if scanErr != nil {
		utils.Warn("scanner", "scan finished with errors", details+"\n"+scanErr.Error())
	} else {
		utils.Info("scanner", "scan finished", details)
	}
	return res, scanErr
}

func (p *Pipeline) analyze(scan *models.Scan) (*models.Analysis, error) {
	start := time.Now()
	defer metrics.ObserveAnalysisDuration(start)
	a, err := analyzer.Analyze(scan, p.Options)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return a, nil
}

func (p *Pipeline) export(guildID string, scan *models.Scan, a *models.Analysis) error {
	if err := database.ExportScan(filepath.Join(p.ExportDir, guildID+"-scan.json"), scan); err != nil {
		return err
	}
	return database.ExportAnalysis(filepath.Join(p.ExportDir, guildID+"-analysis.json"), a)
}

// Restore publishes the stored analysis of guildID, if any.
func (p *Pipeline) Restore(ctx context.Context, guildID string) (bool, error) {
	a, err := p.Store.LatestAnalysis(ctx, guildID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	p.Registry.Set(guildID, a)
	return true, nil
}

// Reanalyze aggregates the stored scan again with the current options.
func (p *Pipeline) Reanalyze(ctx context.Context, guildID string) (*models.Analysis, error) {
	scan, err := p.Store.LatestScan(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("load scan: %w", err)
	}
	a, err := p.analyze(scan)
	if err != nil {
		return nil, err
	}
	if _, err := p.Store.SaveAnalysis(ctx, guildID, a); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	p.Registry.Set(guildID, a)
	return a, nil
}
