package bytestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/matthias/internal/common"
)

const (
	objectPrefix    = "blobs/"
	fileNameMetaKey = "file-name"
)

// S3API is the subset of *s3.Client the store uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Settings names the bucket and how to reach it.
type S3Settings struct {
	Region       string
	RootUser     string
	RootPassword string
	BaseEndpoint string
	Bucket       string
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) S3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds an S3 client for an S3-compatible endpoint such as MinIO.
func NewS3Client(ctx context.Context, st S3Settings) (S3API, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(st.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			st.RootUser,
			st.RootPassword,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(st.BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// S3Store keeps each blob as one object named by its zero-padded index.
type S3Store struct {
	mu     sync.Mutex
	client S3API
	bucket string
	next   int
}

// NewS3Store lists the bucket once to continue numbering after existing objects.
func NewS3Store(ctx context.Context, client S3API, bucket string) (*S3Store, error) {
	n, err := countObjects(ctx, client, bucket)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return &S3Store{client: client, bucket: bucket, next: n}, nil
}

func countObjects(ctx context.Context, client S3API, bucket string) (int, error) {
	n := 0
	p := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(objectPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		for _, obj := range page.Contents {
			idx, err := strconv.Atoi(strings.TrimPrefix(aws.ToString(obj.Key), objectPrefix))
			if err != nil {
				continue
			}
			if idx+1 > n {
				n = idx + 1
			}
		}
	}
	return n, nil
}

func objectKey(index int) string {
	return fmt.Sprintf("%s%010d", objectPrefix, index)
}

func (s *S3Store) Put(ctx context.Context, b Blob) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.next
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(idx)),
		Body:        bytes.NewReader(b.Bytes),
		ContentType: aws.String("application/octet-stream"),
		Metadata:    map[string]string{fileNameMetaKey: url.PathEscape(b.Name)},
	})
	if err != nil {
		return 0, fmt.Errorf("put blob %d: %w", idx, err)
	}
	s.next++
	return idx, nil
}

func (s *S3Store) Get(ctx context.Context, index int) (Blob, error) {
	if index < 0 {
		return Blob{}, fmt.Errorf("blob %d: %w", index, common.ErrNotFound)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(index)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return Blob{}, fmt.Errorf("blob %d: %w", index, common.ErrNotFound)
		}
		return Blob{}, fmt.Errorf("get blob %d: %w", index, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Blob{}, fmt.Errorf("read blob %d: %w", index, err)
	}
	return Blob{Name: metaFileName(out.Metadata), Bytes: data}, nil
}

// metaFileName decodes the escaped name stored by Put. S3 user metadata
// travels as HTTP headers, so it is kept ASCII.
func metaFileName(meta map[string]string) string {
	raw := meta[fileNameMetaKey]
	name, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return name
}
