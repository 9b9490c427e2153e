package main

import (
	"flag"
	"log"
	"time"

	"github.com/VaishnaviPadulkar/solar-main/process/billwatch"
)

func main() {
	dir := flag.String("dir", "uploads/bills", "directory to scan for bill images")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	dry := flag.Bool("dry-run", false, "extract and log only, no DB writes")
	tariff := flag.Float64("tariff", 0, "per-unit tariff; when set, also persist a savings estimate")
	timeout := flag.Int("timeout", 60, "per-image recognition budget in seconds")
	verbose := flag.Bool("verbose", false, "verbose per-file logging")
	flag.Parse()

	err := billwatch.Run(billwatch.Options{
		Dir:     *dir,
		Watch:   *watch,
		Workers: *workers,
		DryRun:  *dry,
		Tariff:  *tariff,
		Timeout: time.Duration(*timeout) * time.Second,
		Verbose: *verbose,
	})
	if err != nil {
		log.Fatalf("billwatch: %v", err)
	}
}
