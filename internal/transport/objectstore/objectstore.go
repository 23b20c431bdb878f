// Package objectstore stores named blobs as objects in an S3-compatible
// bucket (AWS S3, MinIO, R2, Supabase storage and the like).
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
)

const backend = "s3"

const (
	// TestObjectName is written, read back and removed by TestConnection.
	TestObjectName = "connection_test_marker.txt"
	testObjectBody = "scrapsync connection test"
	defaultRegion  = "us-east-1"
)

// s3API is the part of *s3.Client the backend calls.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Config identifies a bucket. Endpoint is empty for AWS itself; any other
// endpoint is addressed path-style.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Timeout   time.Duration
}

type Client struct {
	api     s3API
	bucket  string
	timeout time.Duration
	log     logging.Logger
}

// New validates cfg and builds an S3 client with static credentials.
func New(ctx context.Context, cfg Config, log logging.Logger) (*Client, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: s3 bucket, access key and secret key are required", common.ErrConfiguration)
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	if log == nil {
		log = logging.Nop()
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	api := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		api:     api,
		bucket:  cfg.Bucket,
		timeout: timeout,
		log:     log.With("backend", backend, "bucket", cfg.Bucket),
	}, nil
}

// Get downloads name. A missing object is reported as (nil, false, nil).
func (c *Client) Get(ctx context.Context, name string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket:               aws.String(c.bucket),
		Key:                  aws.String(name),
		ResponseCacheControl: aws.String("no-cache"),
	})
	if err != nil {
		if isNotFound(err) {
			c.log.Debug(ctx, "remote object absent", "name", name)
			return nil, false, nil
		}
		return nil, false, wrap("get", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, wrap("get", fmt.Errorf("read body: %w", err))
	}
	return data, true, nil
}

// Put uploads data as name, overwriting any existing object.
func (c *Client) Put(ctx context.Context, name string, data []byte) error {
	return c.put(ctx, name, data, "application/json; charset=utf-8")
}

func (c *Client) put(ctx context.Context, name string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return wrap("put", err)
	}
	c.log.Debug(ctx, "remote object written", "name", name, "bytes", len(data))
	return nil
}

// TestConnection performs a real write, read and delete of a marker object.
// Listing permissions say little about object read/write permissions, so
// nothing cheaper is attempted. Once written, the marker is removed even when
// the read back fails.
func (c *Client) TestConnection(ctx context.Context) (err error) {
	if err := c.put(ctx, TestObjectName, []byte(testObjectBody), "text/plain"); err != nil {
		return err
	}
	defer func() {
		if derr := c.remove(ctx, TestObjectName); derr != nil && err == nil {
			err = derr
		}
	}()

	data, ok, err := c.Get(ctx, TestObjectName)
	if err != nil {
		return err
	}
	if !ok || string(data) != testObjectBody {
		return common.NewTransportError(backend, "test", 0, data, errors.New("marker object did not read back"))
	}
	return nil
}

func (c *Client) remove(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(name),
	}); err != nil {
		c.log.Warn(ctx, "remote object not removed", "name", name, "error", err)
		return wrap("test", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	return statusCode(err) == http.StatusNotFound
}

func statusCode(err error) int {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}

// wrap converts an SDK error into a TransportError. Credential rejections
// are tagged with common.ErrUnauthorized.
func wrap(op string, err error) error {
	status := statusCode(err)
	unauthorized := status == http.StatusUnauthorized
	msg := ""

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.ErrorCode() + ": " + apiErr.ErrorMessage()
		switch apiErr.ErrorCode() {
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			unauthorized = true
		}
	}
	if unauthorized {
		err = fmt.Errorf("%w: %v", common.ErrUnauthorized, err)
	}
	return common.NewTransportError(backend, op, status, []byte(msg), err)
}
