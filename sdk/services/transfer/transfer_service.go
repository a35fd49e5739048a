// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

// Package transfer moves data between the local filesystem and the
// Prescient data buckets, using temporary credentials brokered by the
// client facade.
package transfer

import (
	"context"
	"errors"

	"github.com/prescient-earth/prescient-sdk-go/sdk/client"
	"github.com/prescient-earth/prescient-sdk-go/sdk/config"
)

type TransferService struct {
	client *client.Client

	// s3 builders, injectable for tests; default to the facade's
	// lazily brokered clients
	uploadS3 func(ctx context.Context) (*config.S3Client, error)
	dataS3   func(ctx context.Context) (*config.S3Client, error)
}

func NewTransferService(c *client.Client) (*TransferService, error) {
	if c == nil {
		return nil, errors.New("client is required")
	}
	return &TransferService{
		client:   c,
		uploadS3: c.UploadS3Client,
		dataS3:   c.DataS3Client,
	}, nil
}
