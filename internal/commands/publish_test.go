package commands

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wot-oss/fwreg/internal/testutils"
	"github.com/wot-oss/fwreg/internal/testutils/s3mocks"
)

func setupDist(t *testing.T) string {
	dist := t.TempDir()
	testutils.WriteFile(t, dist, "index.html", []byte("<html></html>"))
	testutils.WriteFile(t, dist, "manifests.json", []byte(`["packages/a.json"]`))
	testutils.WriteFile(t, dist, "packages/a.json", []byte(`{"id":"a"}`))
	testutils.WriteFile(t, dist, "assets/firmware/a.bin", []byte{0x00, 0x01, 0xff})
	return dist
}

func TestPublish(t *testing.T) {
	dist := setupDist(t)
	c := s3mocks.NewS3Client(t)
	var puts []*s3.PutObjectInput
	c.On("PutObject", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		puts = append(puts, args.Get(1).(*s3.PutObjectInput))
	}).Return(&s3.PutObjectOutput{}, nil)

	rep, err := Publish(context.Background(), c, dist, PublishOptions{Bucket: "registry", Prefix: "/fw/"})

	require.NoError(t, err)
	assert.Equal(t, []string{"fw/assets/firmware/a.bin", "fw/index.html", "fw/manifests.json", "fw/packages/a.json"}, rep.Uploaded)
	assert.Empty(t, rep.Deleted)
	require.Len(t, puts, 4)
	byKey := map[string]*s3.PutObjectInput{}
	for _, p := range puts {
		assert.Equal(t, "registry", aws.ToString(p.Bucket))
		byKey[aws.ToString(p.Key)] = p
	}
	assert.Equal(t, "application/json", aws.ToString(byKey["fw/packages/a.json"].ContentType))
	assert.Contains(t, aws.ToString(byKey["fw/index.html"].ContentType), "text/html")
	assert.Equal(t, "no-store", aws.ToString(byKey["fw/manifests.json"].CacheControl))
	assert.Nil(t, byKey["fw/packages/a.json"].CacheControl)
	c.AssertNotCalled(t, "ListObjectsV2", mock.Anything, mock.Anything)
}

func TestPublish_DeleteStale(t *testing.T) {
	dist := setupDist(t)
	c := s3mocks.NewS3Client(t)
	c.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)
	c.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Prefix) == "fw/" && in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("fw/index.html")},
			{Key: aws.String("fw/assets/firmware/old.bin")},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page2"),
	}, nil).Once()
	c.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page2"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("fw/packages/old.json")}},
		IsTruncated: aws.Bool(false),
	}, nil).Once()
	c.On("DeleteObjects", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectsInput) bool {
		var keys []string
		for _, o := range in.Delete.Objects {
			keys = append(keys, aws.ToString(o.Key))
		}
		return slices.Equal([]string{"fw/assets/firmware/old.bin", "fw/packages/old.json"}, keys)
	})).Return(&s3.DeleteObjectsOutput{}, nil).Once()

	rep, err := Publish(context.Background(), c, dist, PublishOptions{Bucket: "registry", Prefix: "fw", DeleteStale: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"fw/assets/firmware/old.bin", "fw/packages/old.json"}, rep.Deleted)
}

func TestPublish_Errors(t *testing.T) {
	dist := setupDist(t)

	t.Run("no bucket", func(t *testing.T) {
		_, err := Publish(context.Background(), s3mocks.NewS3Client(t), dist, PublishOptions{})
		assert.ErrorIs(t, err, ErrS3Config)
	})
	t.Run("missing dist", func(t *testing.T) {
		_, err := Publish(context.Background(), s3mocks.NewS3Client(t), dist+"-nope", PublishOptions{Bucket: "b"})
		assert.Error(t, err)
	})
	t.Run("operation error", func(t *testing.T) {
		c := s3mocks.NewS3Client(t)
		c.On("PutObject", mock.Anything, mock.Anything).
			Return(nil, &smithy.OperationError{ServiceID: "S3", OperationName: "PutObject", Err: errors.New("access denied")}).Once()

		rep, err := Publish(context.Background(), c, dist, PublishOptions{Bucket: "b"})

		assert.ErrorIs(t, err, ErrS3Op)
		assert.Empty(t, rep.Uploaded)
	})
	t.Run("unknown error", func(t *testing.T) {
		c := s3mocks.NewS3Client(t)
		c.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

		_, err := Publish(context.Background(), c, dist, PublishOptions{Bucket: "b"})

		assert.ErrorIs(t, err, ErrS3Unknown)
	})
}

func TestNewS3Client_Credentials(t *testing.T) {
	_, err := NewS3Client(context.Background(), S3Config{AccessKeyId: "id"})
	assert.ErrorIs(t, err, ErrS3Config)

	c, err := NewS3Client(context.Background(), S3Config{Region: "eu-central-1", Endpoint: "http://localhost:9000", AccessKeyId: "id", SecretAccessKey: "secret"})
	assert.NoError(t, err)
	assert.NotNil(t, c)
}
