// Package billwatch ingests bill images dropped into a directory: every
// new file runs through the extraction pipeline and becomes a BillUpload
// row (plus a Calculation when a tariff is configured and units were
// derived). Useful for bulk imports and for kiosk-style deployments where
// scans land on disk instead of going through the HTTP upload.
package billwatch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/VaishnaviPadulkar/solar-main/models"
	"github.com/VaishnaviPadulkar/solar-main/pkg/billscan"
	"github.com/VaishnaviPadulkar/solar-main/pkg/savings"
)

// Options configures one ingester run.
type Options struct {
	Dir     string        // directory to scan
	Watch   bool          // keep watching after the initial scan
	Workers int           // worker pool size (default NumCPU)
	DryRun  bool          // extract and log only, no DB writes
	Tariff  float64       // per-unit tariff; when > 0 a savings estimate is persisted too
	Timeout time.Duration // per-image recognition budget
	Verbose bool
}

type ingester struct {
	db   *gorm.DB
	opts Options
	// seen guards against double-processing between the initial scan and
	// watch events for the same file.
	seen sync.Map
}

var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Run scans (and optionally watches) a directory of bill images.
func Run(opts Options) error {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	ing := &ingester{opts: opts}
	if !opts.DryRun {
		gdb, err := openDBFromEnv()
		if err != nil {
			return err
		}
		ing.db = gdb
	}

	files := listImageFiles(opts.Dir)
	log.Printf("billwatch: scanning %d files in %s (workers=%d)", len(files), opts.Dir, opts.Workers)

	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				ing.processFile(name)
			}
		}()
	}
	for _, f := range files {
		fileCh <- f
	}

	if !opts.Watch {
		close(fileCh)
		wg.Wait()
		return nil
	}
	return ing.watch(fileCh)
}

func openDBFromEnv() (*gorm.DB, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return gdb, nil
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	_, ok := extMime[strings.ToLower(filepath.Ext(name))]
	return ok
}

// watch feeds stable new files into fileCh until the process is stopped.
func (ing *ingester) watch(fileCh chan<- string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(ing.opts.Dir); err != nil {
		return err
	}
	log.Printf("billwatch: watching %s (debounced) ...", ing.opts.Dir)

	// debounce: a file must sit unchanged briefly before it is considered
	// fully written
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				name := filepath.Base(ev.Name)
				if isSupportedExt(name) {
					pending[name] = time.Now()
				}
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond {
					fileCh <- name
					delete(pending, name)
				}
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("billwatch: watch error: %v", werr)
		}
	}
}

func (ing *ingester) logV(format string, args ...any) {
	if ing.opts.Verbose {
		log.Printf(format, args...)
	}
}

// processFile runs the extraction pipeline for one file and persists the
// outcome. Idempotent: a file already recorded is skipped.
func (ing *ingester) processFile(name string) {
	if _, loaded := ing.seen.LoadOrStore(name, struct{}{}); loaded {
		ing.logV("billwatch: SKIP already handled this run %s", name)
		return
	}
	fullPath := filepath.Join(ing.opts.Dir, name)

	if ing.db != nil {
		var existing models.BillUpload
		if err := ing.db.Where("file_name = ?", name).First(&existing).Error; err == nil {
			ing.logV("billwatch: SKIP upload exists %s (id=%d)", name, existing.ID)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), ing.opts.Timeout)
	defer cancel()
	data, err := billscan.ExtractBillData(ctx, fullPath)
	if ing.opts.DryRun {
		if err != nil {
			log.Printf("billwatch: DRY %s error: %v", name, err)
		} else {
			log.Printf("billwatch: DRY %s consumerNo=%v units=%v amount=%v", name, strVal(data.ConsumerNo), intVal(data.Units), data.Amount)
		}
		return
	}

	if err != nil {
		up := models.BillUpload{FileName: name, StorePath: storePathFor(ing.opts.Dir, name), ContentType: mimeFromExt(name), Failed: true, FailedReason: err.Error()}
		if derr := ing.db.Create(&up).Error; derr != nil {
			log.Printf("billwatch: ERROR record failed upload %s: %v", name, derr)
		}
		log.Printf("billwatch: FAILED %s: %v", name, err)
		return
	}

	up := models.BillUpload{
		FileName:        name,
		StorePath:       storePathFor(ing.opts.Dir, name),
		ContentType:     mimeFromExt(name),
		ConsumerNo:      data.ConsumerNo,
		CustomerName:    data.Name,
		BillDate:        data.BillDate,
		Amount:          data.Amount,
		CurrentReading:  data.Readings.Current,
		PreviousReading: data.Readings.Previous,
		Units:           data.Units,
		RawTextPreview:  data.RawTextPreview,
	}

	if ing.opts.Tariff > 0 && data.Units != nil {
		in := savings.NewInputs(float64(*data.Units), ing.opts.Tariff, nil, nil)
		if res, cerr := savings.Calculate(in); cerr == nil {
			rounded := res.Rounded()
			calc := models.Calculation{
				Usage: in.Usage, Tariff: in.Tariff, Sunlight: in.Sunlight, Efficiency: in.Efficiency,
				MonthlyCost: rounded.MonthlyCost, Savings: rounded.MonthlySavings, YearlySavings: rounded.YearlySavings,
				Source: "bill", CustomerName: strVal(data.Name), BillDate: strVal(data.BillDate),
			}
			if cerr := ing.db.Create(&calc).Error; cerr == nil {
				up.CalculationID = &calc.ID
			}
		}
	}

	if err := ing.db.Create(&up).Error; err != nil {
		if isUniqueConstraintError(err) { // race with the HTTP path
			ing.logV("billwatch: SKIP race on %s", name)
			return
		}
		log.Printf("billwatch: ERROR create upload %s: %v", name, err)
		return
	}
	log.Printf("billwatch: UPLOAD id=%d file=%s units=%v", up.ID, name, intVal(up.Units))

	// move the processed file aside so a restart does not re-scan it
	if err := moveToProcessed(ing.opts.Dir, name); err != nil {
		log.Printf("billwatch: WARN move processed %s: %v", name, err)
	}
}

func storePathFor(dir, name string) string {
	return filepath.ToSlash(filepath.Join(filepath.Base(dir), name))
}

func mimeFromExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

// moveToProcessed moves a handled file into <dir>/processed/<name>,
// falling back to copy+remove across filesystems.
func moveToProcessed(dir, name string) error {
	processedDir := filepath.Join(dir, "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}
	src := filepath.Join(dir, name)
	dst := filepath.Join(processedDir, name)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	_ = out.Close()
	return os.Remove(src)
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intVal(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
