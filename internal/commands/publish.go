package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/wot-oss/fwreg/internal/site"
	"github.com/wot-oss/fwreg/internal/utils"
)

const maxDeleteBatch = 1000

var (
	ErrS3Op      = errors.New("S3 operation failed")
	ErrS3Unknown = errors.New("unknown S3 error")
	ErrS3Config  = errors.New("invalid S3 configuration")
)

// files which the site fetches on every visit
var noStoreFiles = []string{site.ManifestsFile, site.IndexFile}

//go:generate mockery --name S3Client --outpkg s3mocks --output ../testutils/s3mocks
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Config describes how to connect to the bucket. Region, Endpoint and the credentials are optional;
// the AWS SDK defaults apply to whatever is left empty
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyId     string
	SecretAccessKey string
}

func NewS3Client(ctx context.Context, cfg S3Config) (S3Client, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	if (cfg.AccessKeyId == "") != (cfg.SecretAccessKey == "") {
		return nil, fmt.Errorf("%w: access key id and secret access key must be set both when setting credentials explicitly", ErrS3Config)
	}
	if cfg.AccessKeyId != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyId, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("error loading S3 configuration: %w", err)
	}
	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

type PublishOptions struct {
	Bucket string
	// Prefix is prepended to all object keys
	Prefix string
	// DeleteStale removes objects below Prefix which do not correspond to a file in the distribution directory
	DeleteStale bool
}

type PublishReport struct {
	Uploaded []string
	Deleted  []string
}

// Publish uploads every file in dist to the bucket, keyed by its slash-separated path relative to dist
func Publish(ctx context.Context, client S3Client, dist string, opts PublishOptions) (*PublishReport, error) {
	log := utils.GetLogger(ctx, "Publish")
	if opts.Bucket == "" {
		return nil, fmt.Errorf("%w: no bucket given", ErrS3Config)
	}
	stat, err := os.Stat(dist)
	if err != nil {
		return nil, fmt.Errorf("cannot publish %s: %w", dist, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("cannot publish %s: not a directory", dist)
	}
	prefix := strings.Trim(opts.Prefix, "/")

	rep := &PublishReport{}
	err = filepath.WalkDir(dist, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := utils.RelSlash(dist, p)
		if err != nil {
			return err
		}
		key := path.Join(prefix, rel)
		if err := putFile(ctx, client, opts.Bucket, key, p); err != nil {
			return err
		}
		log.Debug("uploaded", "file", rel, "key", key)
		rep.Uploaded = append(rep.Uploaded, key)
		return nil
	})
	if err != nil {
		return rep, err
	}
	log.Info(fmt.Sprintf("uploaded %d files", len(rep.Uploaded)), "bucket", opts.Bucket)

	if opts.DeleteStale {
		deleted, err := deleteStale(ctx, client, opts.Bucket, prefix, rep.Uploaded)
		rep.Deleted = deleted
		if err != nil {
			return rep, err
		}
		log.Info(fmt.Sprintf("deleted %d stale objects", len(deleted)), "bucket", opts.Bucket)
	}
	return rep, nil
}

func putFile(ctx context.Context, client S3Client, bucket, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	in := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(utils.DetectMediaType(file, utils.ReadCloserGetterFromFilename(file))),
	}
	if slices.Contains(noStoreFiles, path.Base(key)) {
		in.CacheControl = aws.String("no-store")
	}
	_, err = client.PutObject(ctx, in)
	if err != nil {
		return s3Error(ctx, "failed to write object to S3", bucket, key, err)
	}
	return nil
}

func deleteStale(ctx context.Context, client S3Client, bucket, prefix string, keep []string) ([]string, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}
	listPrefix := prefix
	if listPrefix != "" {
		listPrefix += "/"
	}

	var stale []string
	var token *string
	for {
		out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(listPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, s3Error(ctx, "failed to list objects from S3", bucket, listPrefix, err)
		}
		for _, o := range out.Contents {
			if o.Key == nil {
				continue
			}
			if _, ok := keepSet[*o.Key]; !ok {
				stale = append(stale, *o.Key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	var deleted []string
	for batch := range slices.Chunk(stale, maxDeleteBatch) {
		ids := make([]types.ObjectIdentifier, len(batch))
		for i := range batch {
			ids[i] = types.ObjectIdentifier{Key: aws.String(batch[i])}
		}
		_, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids},
		})
		if err != nil {
			return deleted, s3Error(ctx, "failed to remove objects from S3", bucket, listPrefix, err)
		}
		deleted = append(deleted, batch...)
	}
	return deleted, nil
}

func s3Error(ctx context.Context, msg, bucket, key string, err error) error {
	utils.GetLogger(ctx, "Publish").Warn(msg, "object", key, "bucket", bucket, "error", err.Error())
	var oe *smithy.OperationError
	if errors.As(err, &oe) {
		return fmt.Errorf("%w, object: %s error: %s", ErrS3Op, key, err.Error())
	}
	return fmt.Errorf("%w, object: %s error: %s", ErrS3Unknown, key, err.Error())
}
