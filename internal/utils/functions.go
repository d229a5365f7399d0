package utils

import (
	"fmt"
	"path/filepath"
	"time"
)

// DestinationPath returns <home>/Downloads/<epoch-millis>.pdf for the given instant.
func DestinationPath(home string, now time.Time) string {
	name := fmt.Sprintf("%d%s", now.UnixMilli(), OutputExtension)
	return filepath.Join(home, DownloadsDirName, name)
}

// FormatMegabytes renders a byte count in MiB with two decimals.
func FormatMegabytes(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func FormatSpeed(bytes int64, elapsed float64) string {
	if elapsed == 0 {
		return "0 B/s"
	}
	bps := float64(bytes) / elapsed
	formatted := FormatBytes(uint64(bps))
	return formatted[:len(formatted)-1] + "B/s" // Slice off "B" and add "B/s"
}
