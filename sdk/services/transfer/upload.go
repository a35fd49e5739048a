// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prescient-earth/prescient-sdk-go/sdk/config"
	"github.com/prescient-earth/prescient-sdk-go/sdk/utils"
)

// Upload sends a local file or directory tree to the upload bucket.
// Object keys keep the input's final path component as the top-level
// folder, e.g. /path/to/data_dir -> s3://bucket/data_dir/file.txt.
func (s *TransferService) Upload(ctx context.Context, req UploadRequest) (*UploadSummary, error) {
	if req.Input == "" {
		return nil, errors.New("missing required input file or directory")
	}
	st, err := os.Stat(req.Input)
	if err != nil {
		return nil, fmt.Errorf("cannot access input: %w", err)
	}

	bucket := req.Bucket
	if bucket == "" {
		bucket = s.client.Settings().UploadBucket
	}
	if bucket == "" {
		return nil, &config.ConfigError{
			Field:  config.EnvPrefix + "_UPLOAD_BUCKET",
			Reason: "required value is not set",
		}
	}

	var files []string
	if st.IsDir() {
		files, err = utils.IterFiles(req.Input, req.Exclude)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate local directory: %w", err)
		}
	} else {
		files = []string{req.Input}
	}

	// credentials are brokered here, after all local validation
	s3c, err := s.uploadS3(ctx)
	if err != nil {
		return nil, err
	}

	var totalBytes int64
	for _, path := range files {
		if info, statErr := os.Stat(path); statErr == nil {
			totalBytes += info.Size()
		}
	}
	utils.Infof("found %d files to upload (%.2f MB)", len(files), float64(totalBytes)/(1024*1024))

	// single-line global progress when not verbose
	var gp *utils.GlobalProgress
	if !req.Verbose {
		gp = &utils.GlobalProgress{TotalKnown: totalBytes > 0, TotalBytes: totalBytes}
	}

	summary := &UploadSummary{
		UploadID: utils.UUIDv4NoDash(),
		Bucket:   bucket,
	}

	for i, path := range files {
		var key string
		if st.IsDir() {
			key, err = utils.MakeObjectKey(path, req.Input)
			if err != nil {
				return summary, err
			}
		} else {
			key = filepath.Base(path)
		}

		if req.SkipExisting {
			exists, err := s3c.ObjectExists(ctx, bucket, key)
			if err != nil {
				return summary, err
			}
			if exists {
				utils.Infof("skipping file %s as it already exists at s3://%s/%s", path, bucket, key)
				summary.Skipped = append(summary.Skipped, key)
				continue
			}
		}

		record, err := uploadOne(ctx, s3c, bucket, key, path, uploadProgress{
			verbose: req.Verbose,
			index:   i + 1,
			total:   len(files),
			global:  gp,
		})
		if err != nil {
			return summary, fmt.Errorf("upload error (%s): %w", path, err)
		}
		summary.Uploaded = append(summary.Uploaded, record)
	}

	if gp != nil {
		gp.Done()
	}
	return summary, nil
}

type uploadProgress struct {
	verbose bool
	index   int
	total   int
	global  *utils.GlobalProgress
}

func uploadOne(ctx context.Context, s3c *config.S3Client, bucket, key, path string, prog uploadProgress) (FileRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("failed to open local file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return FileRecord{}, fmt.Errorf("stat error: %w", err)
	}

	// sniff for the file record; the S3 client sniffs independently
	// for the Content-Type it sends
	header := make([]byte, 512)
	n, _ := file.Read(header)
	contentType := http.DetectContentType(header[:n])
	if _, err := file.Seek(0, 0); err != nil {
		return FileRecord{}, fmt.Errorf("seek error: %w", err)
	}

	hook := buildUploadHook(prog)
	utils.Infof("uploading file %s to s3://%s/%s", path, bucket, key)
	if _, err := s3c.UploadFileWithProgress(ctx, bucket, key, file, hook); err != nil {
		return FileRecord{}, err
	}

	return FileRecord{
		Path:         key,
		Name:         info.Name(),
		ContentType:  contentType,
		LastModified: info.ModTime().UTC().Format(http.TimeFormat),
		Size:         info.Size(),
	}, nil
}

func buildUploadHook(prog uploadProgress) *config.ProgressHook {
	if prog.verbose {
		return &config.ProgressHook{
			OnStart: func(k string, total int64) {
				fmt.Fprintf(os.Stderr, "   [%d/%d] %s\n", prog.index, prog.total, k)
				if total > 0 {
					fmt.Fprintf(os.Stderr, "      size: %.2f MB\n", float64(total)/(1024*1024))
				}
			},
			OnProgress: func(k string, written, total int64) {
				if total <= 0 {
					return
				}
				pct := float64(written) / float64(total) * 100
				fmt.Fprintf(os.Stderr, "\r      uploading: %6.2f%%", pct)
			},
			OnDone: func(k string, total int64, took time.Duration) {
				if total > 0 {
					fmt.Fprintf(os.Stderr, "\r      done:      100.00%% in %s\n", took.Truncate(100*time.Millisecond))
				} else {
					fmt.Fprintf(os.Stderr, "      done in %s\n", took.Truncate(100*time.Millisecond))
				}
			},
		}
	}

	var prevWritten int64
	return &config.ProgressHook{
		OnProgress: func(k string, written, total int64) {
			delta := written - prevWritten
			if delta > 0 && prog.global != nil {
				prog.global.Add(delta)
				prog.global.Render(false)
			}
			prevWritten = written
		},
		OnDone: func(k string, total int64, took time.Duration) {
			if total > prevWritten && prog.global != nil {
				prog.global.Add(total - prevWritten)
				prog.global.Render(true)
			}
		},
	}
}
