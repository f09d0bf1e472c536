package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ObjectGetter is the part of *s3.Client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func defaultS3Client(ctx context.Context) (ObjectGetter, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loader: aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// parseS3URL splits s3://bucket/key.
func parseS3URL(ref string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, s3Prefix), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("loader: invalid S3 URL %q, want s3://bucket/key", ref)
	}
	return bucket, key, nil
}

func (l *Loader) loadS3(ctx context.Context, ref string) (Script, error) {
	bucket, key, err := parseS3URL(ref)
	if err != nil {
		return Script{}, err
	}

	if l.s3 == nil {
		client, err := l.newS3(ctx)
		if err != nil {
			return Script{}, err
		}
		l.s3 = client
	}

	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return Script{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return Script{}, fmt.Errorf("loader: get %s: %w", ref, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Script{}, fmt.Errorf("loader: read %s: %w", ref, err)
	}
	return Script{Ref: ref, Kind: SourceS3, Path: bucket + "/" + key, Text: string(data)}, nil
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}
