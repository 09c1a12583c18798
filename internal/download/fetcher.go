package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ProgressUpdate carries per-file transfer progress.
type ProgressUpdate struct {
	BytesWritten int64
	TotalBytes   int64
}

// ProgressFunc receives throttled progress updates during a transfer.
type ProgressFunc func(ProgressUpdate)

// Fetcher streams remote files to disk.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher.
func NewFetcher(httpClient *http.Client) *Fetcher {
	return &Fetcher{httpClient: httpClient}
}

// FetchFile transfers url to dstPath. Bytes are written to a temporary
// file in the destination directory and renamed into place only after
// exactly expectedSize bytes have arrived, so an interrupted or short
// transfer never leaves a file at the final path. A declared
// Content-Length that contradicts expectedSize fails before any bytes
// are written.
func (f *Fetcher) FetchFile(ctx context.Context, url, dstPath string, expectedSize int64, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}
	if resp.ContentLength >= 0 && resp.ContentLength != expectedSize {
		return fmt.Errorf("download %s: declared length %d does not match expected size %d", url, resp.ContentLength, expectedSize)
	}

	dir := filepath.Dir(dstPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(dstPath)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := copyWithProgress(tmp, resp.Body, expectedSize, progress)
	if err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", dstPath, err)
	}
	if written != expectedSize {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("download %s: received %d bytes, expected %d", url, written, expectedSize)
	}

	// CreateTemp opens the file 0600; the finished media file should be
	// readable like any other download.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("atomic replace %s: %w", dstPath, err)
	}
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, totalBytes int64, progress ProgressFunc) (int64, error) {
	buf := make([]byte, 32*1024)
	var bytesWritten int64
	var lastProgress time.Time

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			written, writeErr := dst.Write(buf[:n])
			if written > 0 {
				bytesWritten += int64(written)
			}
			if writeErr != nil {
				return bytesWritten, writeErr
			}
			if written != n {
				return bytesWritten, io.ErrShortWrite
			}

			if progress != nil {
				now := time.Now()
				if lastProgress.IsZero() || now.Sub(lastProgress) >= 700*time.Millisecond {
					progress(ProgressUpdate{BytesWritten: bytesWritten, TotalBytes: totalBytes})
					lastProgress = now
				}
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				if progress != nil {
					progress(ProgressUpdate{BytesWritten: bytesWritten, TotalBytes: totalBytes})
				}
				return bytesWritten, nil
			}
			return bytesWritten, readErr
		}
	}
}
