// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/prescient-earth/prescient-sdk-go/sdk/config"
	"github.com/prescient-earth/prescient-sdk-go/sdk/utils"
)

// Download fetches a single object or a whole prefix from the data
// bucket into a local path. A trailing slash in the source path selects
// prefix mode; the prefix's relative structure is recreated under the
// destination directory.
func (s *TransferService) Download(ctx context.Context, req DownloadRequest) error {
	if req.Path == "" {
		return errors.New("missing required source path")
	}
	if req.Destination == "" {
		return errors.New("missing required destination")
	}

	parsed, err := utils.ParsePath(req.Path)
	if err != nil {
		return err
	}
	if parsed.Scheme != "s3" {
		return fmt.Errorf("only s3 scheme is supported for download")
	}

	s3c, err := s.dataS3(ctx)
	if err != nil {
		return err
	}

	if strings.HasSuffix(parsed.Path, "/") {
		return downloadPrefix(ctx, s3c, parsed.Host, parsed.Path, req.Destination, req.Verbose)
	}
	return downloadSingle(ctx, s3c, parsed.Host, parsed.Path, req.Destination, req.Verbose)
}

func downloadPrefix(ctx context.Context, s3c *config.S3Client, bucket, prefix, destination string, verbose bool) error {
	var totalFiles int
	var totalBytes int64
	var totalsKnown bool

	all, err := s3c.ListFilesAll(ctx, bucket, prefix)
	if err != nil {
		utils.Warnf("listing failed, proceeding without totals: %v", err)
	} else {
		totalFiles = len(all)
		for _, f := range all {
			totalBytes += f.Size
		}
		totalsKnown = totalFiles > 0 && totalBytes > 0
	}
	utils.Infof("Preparing download s3://%s/%s -> %s", bucket, prefix, destination)

	var gp *utils.GlobalProgress
	if !verbose {
		gp = &utils.GlobalProgress{TotalKnown: totalsKnown, TotalBytes: totalBytes}
	}

	var idx int
	err = s3c.WalkPrefix(ctx, bucket, prefix, 1000, func(obj s3types.Object) error {
		idx++
		key := aws.ToString(obj.Key)
		relativePath := strings.TrimPrefix(key, prefix)
		targetPath := filepath.Join(destination, filepath.FromSlash(relativePath))

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return fmt.Errorf("failed to create local directory: %w", err)
		}

		hook := buildDownloadHook(verbose, idx, totalFiles, relativePath, gp)
		if err := s3c.DownloadFileWithProgress(ctx, bucket, key, targetPath, hook); err != nil {
			return fmt.Errorf("failed to download file: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if gp != nil {
		gp.Done()
	}
	return nil
}

func downloadSingle(ctx context.Context, s3c *config.S3Client, bucket, key, destination string, verbose bool) error {
	if st, err := os.Stat(destination); err == nil && st.IsDir() {
		destination = filepath.Join(destination, filepath.Base(key))
	}

	utils.Infof("Preparing download s3://%s/%s -> %s", bucket, key, destination)

	var gp *utils.GlobalProgress
	if !verbose {
		gp = &utils.GlobalProgress{}
	}
	hook := buildDownloadHook(verbose, 1, 1, filepath.Base(key), gp)
	if err := s3c.DownloadFileWithProgress(ctx, bucket, key, destination, hook); err != nil {
		return fmt.Errorf("S3 download failed: %w", err)
	}
	if gp != nil {
		gp.Done()
	}
	return nil
}

func buildDownloadHook(verbose bool, index, total int, name string, gp *utils.GlobalProgress) *config.ProgressHook {
	if verbose {
		return &config.ProgressHook{
			OnStart: func(k string, totalBytes int64) {
				if total > 0 {
					fmt.Fprintf(os.Stderr, "   [%d/%d] %s\n", index, total, name)
				} else {
					fmt.Fprintf(os.Stderr, "   [%d] %s\n", index, name)
				}
				if totalBytes > 0 {
					fmt.Fprintf(os.Stderr, "      size: %.2f MB\n", float64(totalBytes)/(1024*1024))
				}
			},
			OnProgress: func(k string, written, totalBytes int64) {
				if totalBytes <= 0 {
					return
				}
				pct := float64(written) / float64(totalBytes) * 100
				fmt.Fprintf(os.Stderr, "\r      downloading: %6.2f%%", pct)
			},
			OnDone: func(k string, totalBytes int64, took time.Duration) {
				if totalBytes > 0 {
					fmt.Fprintf(os.Stderr, "\r      done:        100.00%% in %s\n", took.Truncate(100*time.Millisecond))
				} else {
					fmt.Fprintf(os.Stderr, "      done in %s\n", took.Truncate(100*time.Millisecond))
				}
			},
		}
	}

	var prevWritten int64
	return &config.ProgressHook{
		OnStart: func(k string, totalBytes int64) {
			if totalBytes > 0 && gp != nil && !gp.TotalKnown {
				gp.TotalKnown = true
				gp.TotalBytes = totalBytes
			}
		},
		OnProgress: func(k string, written, totalBytes int64) {
			delta := written - prevWritten
			if delta > 0 && gp != nil {
				gp.Add(delta)
				gp.Render(false)
			}
			prevWritten = written
		},
		OnDone: func(k string, totalBytes int64, took time.Duration) {
			if totalBytes > prevWritten && gp != nil {
				gp.Add(totalBytes - prevWritten)
				gp.Render(true)
			}
		},
	}
}
