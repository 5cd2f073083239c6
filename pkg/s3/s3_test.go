package s3

import (
	"testing"

	"blog-admin/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, awsConfig *aws.Config, bucket string) *Client {
	t.Helper()
	awsConfig.Credentials = credentials.NewStaticCredentials("key", "secret", "")
	sess, err := session.NewSession(awsConfig)
	require.NoError(t, err)
	return &Client{s3Client: s3.New(sess), bucket: bucket}
}

func TestObjectURL_AWS(t *testing.T) {
	client := newTestClient(t, &aws.Config{Region: aws.String("eu-west-1")}, "blog-images")

	assert.Equal(t, "https://blog-images.s3.eu-west-1.amazonaws.com/featured/a.png", client.ObjectURL("featured/a.png"))
}

func TestObjectURL_MinIO(t *testing.T) {
	client := newTestClient(t, &aws.Config{
		Region:           aws.String("us-east-1"),
		Endpoint:         aws.String("http://localhost:9000"),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(true),
	}, "blog-images")

	assert.Equal(t, "http://localhost:9000/blog-images/featured/a.png", client.ObjectURL("featured/a.png"))
}

func TestConfigS3Enabled(t *testing.T) {
	cfg := &config.Config{S3BucketName: "blog-images"}
	assert.True(t, cfg.S3Enabled())
}
