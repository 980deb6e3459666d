// Package upload implements the optional `upload(out_dir, dataset_name, host)`
// external collaborator from spec §6: it pushes dataset.json to an
// S3-compatible bucket standing in for the experiment-tracking service the
// spec names but leaves undefined. Adapted from the teacher's
// internal/gateway/repository/artifact.S3Store.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config is the subset of config.Config this package needs, kept narrow so
// upload doesn't import config and create a dependency cycle back toward
// cmd/gendataset.
type Config struct {
	Host      string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Uploader pushes a run's dataset.json to the configured bucket.
type Uploader struct {
	client     *minio.Client
	bucketName string
	initOnce   sync.Once
	initErr    error
}

func New(cfg Config) (*Uploader, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, fmt.Errorf("upload: host is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("upload: access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("upload: bucket is required")
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("upload: init client: %w", err)
	}
	return &Uploader{client: client, bucketName: bucket}, nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	u.initOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucketName)
		if err != nil {
			u.initErr = err
			return
		}
		if exists {
			return
		}
		u.initErr = u.client.MakeBucket(ctx, u.bucketName, minio.MakeBucketOptions{})
	})
	return u.initErr
}

// Upload pushes outDir/dataset.json under the object key
// "<datasetName>/dataset.json".
func (u *Uploader) Upload(ctx context.Context, outDir, datasetName string) error {
	if u == nil {
		return fmt.Errorf("upload: uploader is nil")
	}
	datasetName = strings.TrimSpace(datasetName)
	if datasetName == "" {
		return fmt.Errorf("upload: dataset_name is required")
	}
	content, err := os.ReadFile(filepath.Join(outDir, "dataset.json"))
	if err != nil {
		return fmt.Errorf("upload: read dataset.json: %w", err)
	}
	if err := u.ensureBucket(ctx); err != nil {
		return fmt.Errorf("upload: ensure bucket: %w", err)
	}
	key := datasetName + "/dataset.json"
	_, err = u.client.PutObject(ctx, u.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload: put object: %w", err)
	}
	return nil
}
