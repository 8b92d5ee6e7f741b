// Package s3 implements a store backed by an S3 compatible bucket, e.g. AWS S3
// or MinIO. Keys map to object keys directly.
package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/store/core"
)

type Config struct {
	Bucket string
	// Endpoint is optional and enables custom backends such as MinIO.
	Endpoint string
	// HTTP is optional and replaces the SDK's default client.
	HTTP      *http.Client
	Key       string
	PathStyle bool
	Region    string
	Secret    string
}

type Store struct {
	buc string
	cli *s3.Client
}

func New(ctx context.Context, c Config) (*Store, error) {
	if c.Bucket == "" {
		return nil, tracer.Maskf(invalidConfigError, "Config.Bucket must not be empty")
	}

	if c.Region == "" {
		c.Region = "us-east-1"
	}

	opt := []func(*config.LoadOptions) error{
		config.WithRegion(c.Region),
	}

	if c.Key != "" {
		opt = append(opt, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.Key, c.Secret, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opt...)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	cli := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = c.PathStyle

		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}

		if c.HTTP != nil {
			o.HTTPClient = c.HTTP
		}
	})

	s := &Store{
		buc: c.Bucket,
		cli: cli,
	}

	return s, nil
}

// OpenFromEnv reads the store configuration from the process environment.
//
//	MUSHROOM_STORE_S3_BUCKET     required
//	MUSHROOM_STORE_S3_REGION     default us-east-1
//	MUSHROOM_STORE_S3_ENDPOINT   optional, e.g. http://localhost:9000
//	MUSHROOM_STORE_S3_PATH_STYLE true|false
//	AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY via the default credential chain
func OpenFromEnv(ctx context.Context) (*Store, error) {
	c := Config{
		Bucket:    os.Getenv("MUSHROOM_STORE_S3_BUCKET"),
		Endpoint:  os.Getenv("MUSHROOM_STORE_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("MUSHROOM_STORE_S3_PATH_STYLE"), "true"),
		Region:    os.Getenv("MUSHROOM_STORE_S3_REGION"),
	}

	s, err := New(ctx, c)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return s, nil
}

func (s *Store) Driver() core.Driver { return core.DriverS3 }

func (s *Store) Put(ctx context.Context, key string, byt []byte) error {
	key, err := core.Key(key)
	if err != nil {
		return tracer.Mask(err)
	}

	inp := &s3.PutObjectInput{
		Body:          bytes.NewReader(byt),
		Bucket:        aws.String(s.buc),
		ContentLength: aws.Int64(int64(len(byt))),
		ContentType:   aws.String("application/octet-stream"),
		Key:           aws.String(key),
	}

	{
		_, err := s.cli.PutObject(ctx, inp)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := core.Key(key)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	out, err := s.cli.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.buc), Key: aws.String(key)})
	if missing(err) {
		return nil, tracer.Maskf(core.NotFoundError, "%s", key)
	} else if err != nil {
		return nil, tracer.Mask(err)
	}
	defer out.Body.Close()

	byt, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return byt, nil
}

// Delete checks existence first, since S3 deletes unknown keys silently.
func (s *Store) Delete(ctx context.Context, key string) error {
	key, err := core.Key(key)
	if err != nil {
		return tracer.Mask(err)
	}

	{
		_, err := s.cli.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.buc), Key: aws.String(key)})
		if missing(err) {
			return tracer.Maskf(core.NotFoundError, "%s", key)
		} else if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		_, err := s.cli.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.buc), Key: aws.String(key)})
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

func (s *Store) List(ctx context.Context, pre string) ([]string, error) {
	var key []string
	var tok *string

	for {
		out, err := s.cli.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.buc),
			ContinuationToken: tok,
			Prefix:            aws.String(pre),
		})
		if err != nil {
			return nil, tracer.Mask(err)
		}

		for _, o := range out.Contents {
			key = append(key, aws.ToString(o.Key))
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}

		tok = out.NextContinuationToken
	}

	sort.Strings(key)

	return key, nil
}

func missing(err error) bool {
	if err == nil {
		return false
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var nfd *types.NotFound
	if errors.As(err, &nfd) {
		return true
	}

	var res *awshttp.ResponseError
	if errors.As(err, &res) && res.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	return false
}
