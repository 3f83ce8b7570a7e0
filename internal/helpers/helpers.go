package helpers

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// CounterWriter tracks the number of bytes written to the underlying writer.
// Total may be read concurrently while a download is in progress.
type CounterWriter struct {
	Writer io.Writer
	total  atomic.Uint64
}

// Write implements the io.Writer interface for CounterWriter.
func (cw *CounterWriter) Write(p []byte) (int, error) {
	n, err := cw.Writer.Write(p)
	cw.total.Add(uint64(n))
	return n, err
}

// Total returns the number of bytes written so far.
func (cw *CounterWriter) Total() uint64 {
	return cw.total.Load()
}

// BytesToSize converts a byte count into a human-readable string (KB, MB, GB, etc.).
func BytesToSize(bytes uint64) string {
	sizes := []string{"B", "KB", "MB", "GB", "TB"}
	if bytes == 0 {
		return "0B"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1 // Handle very large sizes
	}
	return fmt.Sprintf("%.2f%s", float64(bytes)/math.Pow(1024, float64(i)), sizes[i])
}

// CheckAndMakeDir ensures a directory exists, creating it if necessary.
func CheckAndMakeDir(dir string) bool {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		log.WithError(err).Errorf("Error creating directory %s", dir)
		return false
	}
	return true
}

// RemoveTempFiles walks dir and removes every file ending in ".tmp", the
// leftovers of interrupted downloads. It returns how many files were removed
// and how many could not be.
func RemoveTempFiles(dir string) (removed, failed int, err error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("accessing %q: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, 0, fmt.Errorf("%q is not a directory", dir)
	}

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warnf("Error accessing path %q during scan: %v", path, err)
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".tmp") {
			return nil
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			log.Errorf("Failed to remove .tmp file %q: %v", path, err)
			failed++
			return nil
		}
		log.Infof("Removed .tmp file: %s", path)
		removed++
		return nil
	})
	return removed, failed, walkErr
}
