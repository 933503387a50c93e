// Package s3 wraps the object store: paginated listing with two distinct
// selection policies, gzip NDJSON reads, and plain writes. All decision
// logic lives in the callers; this adapter only moves bytes.
package s3

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
)

// ErrNoObjects reports that a listing matched nothing at all. Callers treat
// this as a fatal "no input available" condition, never as an empty batch.
var ErrNoObjects = errors.New("no matching objects")

// maxLineBytes bounds a single NDJSON line; the telemetry snapshot packs a
// whole feed into one line, so this is generous.
const maxLineBytes = 64 * 1024 * 1024

// API is the subset of the object-store client the adapter uses, split out
// so tests can substitute a fake.
type API interface {
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// ObjectInfo is one listed object.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// Client is the object-store adapter.
type Client struct {
	api    API
	logger *slog.Logger
}

// New creates a Client around the given object-store API.
func New(api API, logger *slog.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// Keys returns a lazy, re-listable sequence of objects under a prefix whose
// keys end with suffix (empty suffix matches everything). Pagination
// continuation tokens are followed transparently; the next page is fetched
// only after the prior page's keys have been yielded. Ranging again re-lists
// from the start.
func (c *Client) Keys(ctx context.Context, bucket, prefix, suffix string) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		var token *string
		for {
			input := &awss3.ListObjectsV2Input{
				Bucket:            aws.String(bucket),
				ContinuationToken: token,
			}
			if prefix != "" {
				input.Prefix = aws.String(prefix)
			}
			page, err := c.api.ListObjectsV2(ctx, input)
			if err != nil {
				yield(ObjectInfo{}, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err))
				return
			}
			for _, obj := range page.Contents {
				key := aws.ToString(obj.Key)
				if suffix != "" && !strings.HasSuffix(key, suffix) {
					continue
				}
				info := ObjectInfo{Key: key, LastModified: aws.ToTime(obj.LastModified)}
				if !yield(info, nil) {
					return
				}
			}
			if !aws.ToBool(page.IsTruncated) {
				return
			}
			token = page.NextContinuationToken
		}
	}
}

// List drains Keys into a slice.
func (c *Client) List(ctx context.Context, bucket, prefix, suffix string) ([]ObjectInfo, error) {
	var objs []ObjectInfo
	for info, err := range c.Keys(ctx, bucket, prefix, suffix) {
		if err != nil {
			return nil, err
		}
		objs = append(objs, info)
	}
	return objs, nil
}

// MaxKey selects the lexicographically maximal matching key. Ingestion uses
// this policy: staging key names embed a sortable timestamp, so the maximal
// key is the newest batch. Do not conflate with LatestByModified.
func (c *Client) MaxKey(ctx context.Context, bucket, prefix, suffix string) (string, error) {
	objs, err := c.List(ctx, bucket, prefix, suffix)
	if err != nil {
		return "", err
	}
	if len(objs) == 0 {
		return "", fmt.Errorf("s3://%s/%s (suffix %q): %w", bucket, prefix, suffix, ErrNoObjects)
	}
	best := objs[0].Key
	for _, o := range objs[1:] {
		if o.Key > best {
			best = o.Key
		}
	}
	return best, nil
}

// LatestByModified selects the most recently modified matching key. The
// load and reconciliation steps use this policy to find the current
// load-ready file.
func (c *Client) LatestByModified(ctx context.Context, bucket, prefix, suffix string) (string, error) {
	objs, err := c.List(ctx, bucket, prefix, suffix)
	if err != nil {
		return "", err
	}
	if len(objs) == 0 {
		return "", fmt.Errorf("s3://%s/%s (suffix %q): %w", bucket, prefix, suffix, ErrNoObjects)
	}
	best := objs[0]
	for _, o := range objs[1:] {
		if o.LastModified.After(best.LastModified) {
			best = o
		}
	}
	return best.Key, nil
}

// GetLines fetches an object and splits it into non-empty lines,
// transparently gunzipping keys with a .gz suffix.
func (c *Client) GetLines(ctx context.Context, bucket, key string) ([][]byte, error) {
	out, err := c.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	var body io.Reader = out.Body
	if strings.HasSuffix(key, ".gz") {
		gz, err := gzip.NewReader(out.Body)
		if err != nil {
			return nil, fmt.Errorf("gunzip s3://%s/%s: %w", bucket, key, err)
		}
		defer gz.Close()
		body = gz
	}

	var lines [][]byte
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 1024*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return lines, nil
}

// Get fetches a whole object body.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return body, nil
}

// Put uploads an object.
func (c *Client) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	input := &awss3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := c.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
