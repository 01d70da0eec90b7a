package cache

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API 缓存用到的 S3 操作
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 每个键一个对象 过期规则同 File
type S3 struct {
	Client S3API
	Bucket string
	Prefix string
	now    func() time.Time
}

// S3Options 连接参数 为空的字段使用 SDK 默认值
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func NewS3(client S3API, bucket, prefix string) *S3 {
	return &S3{Client: client, Bucket: bucket, Prefix: prefix, now: time.Now}
}

// NewS3Client 按参数构建 S3 客户端 Endpoint 非空时使用 path-style
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, config.WithRegion(o.Region))
	}
	if o.AccessKey != "" && o.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	var clientOpts []func(*s3.Options)
	if o.Endpoint != "" {
		clientOpts = append(clientOpts, func(so *s3.Options) {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

func (c *S3) objectKey(key string) string {
	sum := md5.Sum([]byte(key))
	return c.Prefix + hex.EncodeToString(sum[:])
}

func (c *S3) Fetch(ctx context.Context, key string) (Rows, bool, error) {
	out, err := c.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, err
	}
	rows, expire, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	if expired(c.now(), expire) {
		return nil, false, nil
	}
	return rows, true, nil
}

func (c *S3) Store(ctx context.Context, key string, rows Rows, ttl time.Duration) error {
	data, err := encode(rows, expireAt(c.now(), ttl))
	if err != nil {
		return err
	}
	_, err = c.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(c.objectKey(key)),
		Body:   bytes.NewReader(data),
	})
	return err
}

func (c *S3) Clear(ctx context.Context, key string) (bool, error) {
	k := aws.String(c.objectKey(key))
	_, err := c.Client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(c.Bucket), Key: k})
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, err = c.Client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(c.Bucket), Key: k})
	return err == nil, err
}

// Flush 删除前缀下的所有对象
func (c *S3) Flush(ctx context.Context) error {
	p := s3.NewListObjectsV2Paginator(c.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.Bucket),
		Prefix: aws.String(c.Prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			if _, err := c.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(c.Bucket),
				Key:    obj.Key,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
