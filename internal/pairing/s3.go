package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"audiopref/internal/logging"
)

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Source lists pair folders from an S3-compatible bucket. Every common
// prefix below Prefix is a folder. Assets are identified as s3://bucket/key
// and served through presigned GET URLs, which change on every listing.
type S3Source struct {
	client       s3.ListObjectsV2APIClient
	presigner    s3Presigner
	bucket       string
	prefix       string
	rawName      string
	improvedName string
	expires      time.Duration
	logger       *slog.Logger
}

// S3Options configures an S3Source.
type S3Options struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	Expires      time.Duration
	RawName      string
	ImprovedName string
}

// NewS3Source builds an S3 client from opts. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, opts S3Options, logger *slog.Logger) (*S3Source, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return newS3Source(client, s3.NewPresignClient(client), opts, logger), nil
}

func newS3Source(client s3.ListObjectsV2APIClient, presigner s3Presigner, opts S3Options, logger *slog.Logger) *S3Source {
	expires := opts.Expires
	if expires <= 0 {
		expires = time.Hour
	}
	prefix := strings.Trim(opts.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Source{
		client:       client,
		presigner:    presigner,
		bucket:       opts.Bucket,
		prefix:       prefix,
		rawName:      opts.RawName,
		improvedName: opts.ImprovedName,
		expires:      expires,
		logger:       logging.NewComponentLogger(logger, "pairing.s3"),
	}
}

// Folders lists the folder prefixes and presigns the assets in each.
func (s *S3Source) Folders(ctx context.Context) ([]Folder, error) {
	var prefixes []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(s.prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3 prefixes in %s: %w", s.bucket, err)
		}
		for _, cp := range page.CommonPrefixes {
			prefixes = append(prefixes, aws.ToString(cp.Prefix))
		}
	}

	folders := make([]Folder, 0, len(prefixes))
	for _, prefix := range prefixes {
		folder, err := s.folder(ctx, prefix)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	logging.WithContext(ctx, s.logger).Debug("listed s3 audio folders",
		logging.String("bucket", s.bucket),
		logging.String("prefix", s.prefix),
		logging.Int("folders", len(folders)))
	return folders, nil
}

func (s *S3Source) folder(ctx context.Context, prefix string) (Folder, error) {
	folder := Folder{Name: path.Base(strings.TrimSuffix(prefix, "/"))}
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return Folder{}, fmt.Errorf("list s3 folder %s: %w", prefix, err)
	}
	for _, object := range out.Contents {
		key := aws.ToString(object.Key)
		switch strings.TrimPrefix(key, prefix) {
		case s.rawName:
			folder.Raw = s.objectURI(key)
			if folder.RawURL, err = s.presign(ctx, key); err != nil {
				return Folder{}, err
			}
		case s.improvedName:
			folder.Improved = s.objectURI(key)
			if folder.ImprovedURL, err = s.presign(ctx, key); err != nil {
				return Folder{}, err
			}
		}
	}
	return folder, nil
}

func (s *S3Source) objectURI(key string) string {
	return "s3://" + s.bucket + "/" + key
}

func (s *S3Source) presign(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
