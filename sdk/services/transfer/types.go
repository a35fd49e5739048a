// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package transfer

// -------- Upload --------

type UploadRequest struct {
	// Input is a local file or directory (required). For a directory,
	// the final path component becomes the top-level folder of the
	// object keys.
	Input string

	// Bucket overrides the configured upload bucket (optional).
	Bucket string

	// Exclude holds glob patterns; matching files are skipped.
	Exclude []string

	// SkipExisting head-checks each key and skips objects that are
	// already present. Useful for continuing an interrupted upload.
	SkipExisting bool

	Verbose bool
}

type FileRecord struct {
	Path         string `json:"path"          yaml:"path"`
	Name         string `json:"name"          yaml:"name"`
	ContentType  string `json:"content_type"  yaml:"content_type"`
	LastModified string `json:"last_modified" yaml:"last_modified"`
	Size         int64  `json:"size"          yaml:"size"`
}

type UploadSummary struct {
	UploadID string       `json:"upload_id" yaml:"upload_id"`
	Bucket   string       `json:"bucket"    yaml:"bucket"`
	Uploaded []FileRecord `json:"uploaded"  yaml:"uploaded"`
	Skipped  []string     `json:"skipped"   yaml:"skipped"`
}

// -------- Download --------

type DownloadRequest struct {
	// Path is a storage URL (s3://bucket/key or s3://bucket/prefix/).
	// A trailing slash downloads the whole prefix.
	Path string

	// Destination is the local file or directory to write to.
	Destination string

	Verbose bool
}
