package loader

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/costlocker/reports/internal/domain/entity"
)

// unsafeKeyChars matches anything outside the S3 safe character set.
var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Loader stores reports in a bucket under a key derived from the unique
// report id, so a rerun of the same period overwrites the object.
type S3Loader struct {
	region    string
	newClient func(ctx context.Context, region string) (objectPutter, error)
}

// NewS3Loader creates a loader using the default AWS credential chain.
// region is used when the export config has none.
func NewS3Loader(region string) *S3Loader {
	return &S3Loader{region: region, newClient: newS3Client}
}

func (l *S3Loader) Name() string {
	return "s3"
}

func (l *S3Loader) Enabled(export entity.ExportSettings) bool {
	return export.S3 != nil && export.S3.Bucket != ""
}

func (l *S3Loader) Load(ctx context.Context, filePath, title string, export entity.ExportSettings) (any, error) {
	target := export.S3
	if target == nil || target.Bucket == "" {
		return nil, nil
	}

	region := target.Region
	if region == "" {
		region = l.region
	}
	client, err := l.newClient(ctx, region)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	key := path.Join(target.Prefix, keySegment(target.UniqueReportID), filepath.Base(filePath))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(target.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(mimeType(filePath)),
		Metadata:    map[string]string{"title": title},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload s3://%s/%s: %w", target.Bucket, key, err)
	}
	return map[string]string{"bucket": target.Bucket, "key": key}, nil
}

// keySegment turns a unique report id into a single key segment. Ids of
// multi-date ranges are JSON arrays, so brackets, quotes and commas collapse
// into hyphens.
func keySegment(id string) string {
	segment := strings.Trim(unsafeKeyChars.ReplaceAllString(id, "-"), "-.")
	if segment == "" {
		return "report"
	}
	return segment
}

func newS3Client(ctx context.Context, region string) (objectPutter, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}
