// =============================================================================
// ERP Sales Reconciler - File Manager Module
// =============================================================================
//
// File handling around the reconciliation pipeline:
//   - Discovery: scan the input directory and pair export files into sets
//     (header + items, optionally a general-ledger file) by their file name
//     with the role token removed.
//   - Archival: move successfully processed exports out of the input
//     directory so re-runs do not reprocess them.
//   - Run logs: a plain-text summary and error log per run, named by the
//     run's UUID.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EXPORT SET DISCOVERY
// =============================================================================

// ExportSet is one reconcilable group of export files. LedgerPath is empty
// when the set has no general-ledger file; HeaderPath and ItemsPath are
// always both present, since an unpaired file cannot be reconciled.
type ExportSet struct {
	// Key identifies the set: the shared file name with the role token and
	// extension stripped, e.g. "2024-05_" for "2024-05_header.xml".
	Key string

	HeaderPath string
	ItemsPath  string
	LedgerPath string
}

// FileManager handles discovery and archival for a configured directory
// layout.
type FileManager struct {
	InputDir        string
	OutputDir       string
	InputArchiveDir string
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// EnsureDirectories creates any missing managed directory.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DiscoverExportSets scans the input directory for XML exports and pairs
// them into sets. A file's role comes from the token in its name; its set
// comes from the name with the token removed. Header files without a
// matching items file (and vice versa) are reported so the operator sees the
// incomplete upload instead of a silently skipped month.
func (fm *FileManager) DiscoverExportSets(headerToken, itemsToken, ledgerToken string) ([]ExportSet, []string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	headers := make(map[string]string)
	items := make(map[string]string)
	ledgers := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		name := entry.Name()
		path := filepath.Join(fm.InputDir, name)

		switch {
		case strings.Contains(name, headerToken):
			headers[setKey(name, headerToken)] = path
		case strings.Contains(name, itemsToken):
			items[setKey(name, itemsToken)] = path
		case ledgerToken != "" && strings.Contains(name, ledgerToken):
			ledgers[setKey(name, ledgerToken)] = path
		}
	}

	var sets []ExportSet
	var unpaired []string

	for key, headerPath := range headers {
		itemsPath, ok := items[key]
		if !ok {
			unpaired = append(unpaired, headerPath)
			continue
		}
		sets = append(sets, ExportSet{
			Key:        key,
			HeaderPath: headerPath,
			ItemsPath:  itemsPath,
			LedgerPath: ledgers[key],
		})
		delete(items, key)
	}
	for _, itemsPath := range items {
		unpaired = append(unpaired, itemsPath)
	}

	// Deterministic processing and reporting order.
	sort.Slice(sets, func(i, j int) bool { return sets[i].Key < sets[j].Key })
	sort.Strings(unpaired)

	return sets, unpaired, nil
}

// setKey strips the role token and extension from a file name.
func setKey(name, token string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.Replace(base, token, "", 1)
}

// =============================================================================
// ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed export into the input archive. If a
// file with the same name already exists there, a timestamp suffix keeps the
// older copy.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if err := os.MkdirAll(fm.InputArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(fm.InputArchiveDir, filepath.Base(filePath))
	if FileExists(archivePath) {
		ext := filepath.Ext(archivePath)
		stem := strings.TrimSuffix(archivePath, ext)
		archivePath = fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filePath, err)
	}
	return archivePath, nil
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// RUN LOGS
// =============================================================================

// RunSummary describes one invocation of the reconcile command across all
// its export sets.
type RunSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time

	TotalSets      int
	SuccessfulSets int
	FailedSets     int

	HeadersRead int
	ItemsRead   int
	RowsMerged  int
	Returns     int

	Sets []SetOutcome
}

// SetOutcome is the per-set line of the run summary.
type SetOutcome struct {
	Key         string
	Success     bool
	OutputFiles []string
	RowsMerged  int
	Error       string
	Elapsed     time.Duration
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// WriteRunSummary writes the plain-text run summary to the output directory
// and returns its path.
func WriteRunSummary(summary RunSummary, outputDir string) (string, error) {
	logPath := filepath.Join(outputDir, fmt.Sprintf("run_%s_summary.txt", summary.RunID))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create run summary: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "ERP Sales Reconciler - Run Summary\n")
	fmt.Fprintf(writer, "Run ID:      %s\n", summary.RunID)
	fmt.Fprintf(writer, "Started:     %s\n", summary.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "Finished:    %s\n", summary.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "Elapsed:     %s\n", summary.EndTime.Sub(summary.StartTime))
	fmt.Fprintf(writer, "%s\n", strings.Repeat("=", 72))
	fmt.Fprintf(writer, "Export sets: %d (ok %d, failed %d)\n",
		summary.TotalSets, summary.SuccessfulSets, summary.FailedSets)
	fmt.Fprintf(writer, "Headers read: %d, items read: %d, ledger rows: %d, returns: %d\n\n",
		summary.HeadersRead, summary.ItemsRead, summary.RowsMerged, summary.Returns)

	for _, set := range summary.Sets {
		status := "OK"
		if !set.Success {
			status = "FAILED"
		}
		fmt.Fprintf(writer, "[%s] %s (%s)\n", status, set.Key, set.Elapsed)
		if set.Error != "" {
			fmt.Fprintf(writer, "    error: %s\n", set.Error)
		}
		for _, output := range set.OutputFiles {
			fmt.Fprintf(writer, "    wrote: %s\n", output)
		}
		if set.Success {
			fmt.Fprintf(writer, "    ledger rows: %d\n", set.RowsMerged)
		}
	}

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush run summary: %w", err)
	}
	return logPath, nil
}

// ErrorLogEntry is one fatal failure recorded for a run.
type ErrorLogEntry struct {
	Timestamp time.Time
	SetKey    string
	File      string
	Message   string
}

// WriteErrorLog writes fatal errors to a per-run log file and returns its
// path; no entries means no file.
func WriteErrorLog(runID string, entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("run_%s_errors.txt", runID))
	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "ERP Sales Reconciler - Error Log (run %s)\n", runID)
	fmt.Fprintf(writer, "Total errors: %d\n%s\n\n", len(entries), strings.Repeat("=", 72))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n", i+1)
		fmt.Fprintf(writer, "  Timestamp: %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
		if entry.SetKey != "" {
			fmt.Fprintf(writer, "  Set:       %s\n", entry.SetKey)
		}
		if entry.File != "" {
			fmt.Fprintf(writer, "  File:      %s\n", entry.File)
		}
		fmt.Fprintf(writer, "  Message:   %s\n\n", entry.Message)
	}

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}
