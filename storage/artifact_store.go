package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"sweep-runner/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArtifactStore uploads finished job outputs (metrics JSON and job.log) to
// an S3 bucket, keyed <run-id>/<axis>/epoch_<n>/<relative path>
type ArtifactStore struct {
	client *s3.Client
	bucket string
}

// NewArtifactStore creates an artifact store backed by the given bucket,
// using the ambient AWS credential chain
func NewArtifactStore(ctx context.Context, bucket string) (*ArtifactStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &ArtifactStore{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// UploadJobOutput uploads the job's output directory contents
func (s *ArtifactStore) UploadJobOutput(ctx context.Context, spec *models.JobSpec) error {
	prefix := path.Join(spec.RunID, spec.Axis)
	if spec.Mode == models.ModeTest {
		prefix = path.Join(prefix, fmt.Sprintf("epoch_%d", spec.Epoch))
	}

	return filepath.WalkDir(spec.OutputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(p, ".json") && filepath.Base(p) != "job.log" {
			return nil
		}

		rel, err := filepath.Rel(spec.OutputDir, p)
		if err != nil {
			return err
		}

		return s.putFile(ctx, p, path.Join(prefix, filepath.ToSlash(rel)))
	})
}

func (s *ArtifactStore) putFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return nil
}
