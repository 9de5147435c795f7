// Package miniostore implements objstore.Client for Tencent Cloud Object
// Storage, and any other S3-compatible store, on top of the minio-go
// client.
//
// COS buckets are reached through the S3-compatible endpoint of their
// region, such as cos.ap-guangzhou.myqcloud.com, with virtual-host style
// bucket lookup.
package miniostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"lesiw.io/cosfs/objstore"
)

// Options configures a Client.
type Options struct {
	// Endpoint is the host, and optional port, of the S3-compatible API.
	Endpoint string

	// Bucket is the bucket every request operates on. COS bucket names
	// include the account's APPID suffix, as in examplebucket-1250000000.
	Bucket string

	// Region is the bucket's region, such as ap-guangzhou. Empty lets
	// the client discover it.
	Region string

	// SecretID and SecretKey are static credentials. SessionToken is set
	// for temporary STS credentials. When SecretID is empty, credentials
	// are read from the standard AWS and MinIO environment variables.
	SecretID     string
	SecretKey    string
	SessionToken string

	// Insecure disables TLS.
	Insecure bool

	// PathStyle addresses the bucket in the request path instead of the
	// host name.
	PathStyle bool
}

// A Client is an objstore.Client backed by minio-go.
type Client struct {
	core   *minio.Core
	bucket string
}

var (
	_ objstore.BatchDeleter = (*Client)(nil)
	_ objstore.UploadLister = (*Client)(nil)
)

// New returns a Client for the bucket described by opts. It makes no
// requests.
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("missing endpoint")
	}
	if opts.Bucket == "" {
		return nil, errors.New("missing bucket")
	}
	endpoint, ok := strings.CutPrefix(opts.Endpoint, "https://")
	if !ok {
		endpoint, ok = strings.CutPrefix(opts.Endpoint, "http://")
		opts.Insecure = opts.Insecure || ok
	}

	lookup := minio.BucketLookupDNS
	if opts.PathStyle {
		lookup = minio.BucketLookupPath
	}
	core, err := minio.NewCore(strings.TrimSuffix(endpoint, "/"),
		&minio.Options{
			Creds:        newCredentials(opts),
			Secure:       !opts.Insecure,
			Region:       opts.Region,
			BucketLookup: lookup,
		})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return &Client{core: core, bucket: opts.Bucket}, nil
}

func newCredentials(opts Options) *credentials.Credentials {
	if opts.SecretID != "" {
		return credentials.NewStaticV4(
			opts.SecretID, opts.SecretKey, opts.SessionToken,
		)
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
	})
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string { return c.bucket }

// PutObject uploads size bytes from r as k.
func (c *Client) PutObject(
	ctx context.Context, k string, r io.Reader, size int64,
) (string, error) {
	info, err := c.core.PutObject(ctx, c.bucket, k, r, size, "", "",
		minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
	if err != nil {
		return "", convert(err, k)
	}
	return info.ETag, nil
}

// GetObject returns length bytes of k starting at offset. A negative
// length reads to the end of the object.
func (c *Client) GetObject(
	ctx context.Context, k string, offset, length int64,
) (io.ReadCloser, error) {
	if length == 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}
	opts, err := rangeOptions(offset, length)
	if err != nil {
		return nil, err
	}
	body, _, _, err := c.core.GetObject(ctx, c.bucket, k, opts)
	if err != nil {
		return nil, convert(err, k)
	}
	return body, nil
}

// rangeOptions returns the options for a GET of length bytes at offset.
func rangeOptions(offset, length int64) (minio.GetObjectOptions, error) {
	var opts minio.GetObjectOptions
	var err error
	switch {
	case offset < 0:
		err = fmt.Errorf("negative offset %d", offset)
	case length < 0 && offset > 0:
		err = opts.SetRange(offset, 0)
	case length > 0:
		err = opts.SetRange(offset, offset+length-1)
	}
	if err != nil {
		return opts, fmt.Errorf("setting range: %w", err)
	}
	return opts, nil
}

// HeadObject returns the metadata of k.
func (c *Client) HeadObject(
	ctx context.Context, k string,
) (objstore.ObjectInfo, error) {
	info, err := c.core.StatObject(ctx, c.bucket, k,
		minio.StatObjectOptions{})
	if err != nil {
		return objstore.ObjectInfo{}, convert(err, k)
	}
	return objectInfo(info), nil
}

// ListObjects returns one page of keys matching in.
//
// The underlying ListObjectsV2 call does not take a context, so ctx is
// only checked before the request is made.
func (c *Client) ListObjects(
	ctx context.Context, in objstore.ListInput,
) (objstore.ListOutput, error) {
	if err := ctx.Err(); err != nil {
		return objstore.ListOutput{}, err
	}
	res, err := c.core.ListObjectsV2(c.bucket, in.Prefix, "",
		in.ContinuationToken, in.Delimiter, in.MaxKeys)
	if err != nil {
		return objstore.ListOutput{}, convert(err, in.Prefix)
	}
	out := objstore.ListOutput{
		Objects:        make([]objstore.ObjectInfo, 0, len(res.Contents)),
		CommonPrefixes: make([]string, 0, len(res.CommonPrefixes)),
	}
	for _, o := range res.Contents {
		out.Objects = append(out.Objects, objectInfo(o))
	}
	for _, p := range res.CommonPrefixes {
		out.CommonPrefixes = append(out.CommonPrefixes, p.Prefix)
	}
	if res.IsTruncated {
		out.NextContinuationToken = res.NextContinuationToken
	}
	return out, nil
}

// DeleteObject removes k.
func (c *Client) DeleteObject(ctx context.Context, k string) error {
	err := c.core.RemoveObject(ctx, c.bucket, k,
		minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return convert(err, k)
	}
	return nil
}

// DeleteObjects removes up to objstore.MaxDeleteKeys keys in one request.
func (c *Client) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) > objstore.MaxDeleteKeys {
		return fmt.Errorf("deleting %d keys: more than %d",
			len(keys), objstore.MaxDeleteKeys)
	}
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objects <- minio.ObjectInfo{Key: k}
	}
	close(objects)

	var errs []error
	for rerr := range c.core.RemoveObjects(ctx, c.bucket, objects,
		minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil && !isNotFound(rerr.Err) {
			errs = append(errs, convert(rerr.Err, rerr.ObjectName))
		}
	}
	return errors.Join(errs...)
}

// CopyObject copies src to dst with a store-side copy.
func (c *Client) CopyObject(ctx context.Context, src, dst string) error {
	_, err := c.core.Client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: c.bucket, Object: src},
	)
	if err != nil {
		return convert(err, src)
	}
	return nil
}

// InitiateMultipart starts a multipart upload to k.
func (c *Client) InitiateMultipart(
	ctx context.Context, k string,
) (string, error) {
	id, err := c.core.NewMultipartUpload(ctx, c.bucket, k,
		minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
	if err != nil {
		return "", convert(err, k)
	}
	return id, nil
}

// UploadPart uploads part number of an upload.
func (c *Client) UploadPart(
	ctx context.Context, k, uploadID string, number int,
	r io.Reader, size int64,
) (string, error) {
	part, err := c.core.PutObjectPart(ctx, c.bucket, k, uploadID, number,
		r, size, minio.PutObjectPartOptions{})
	if err != nil {
		return "", convert(err, k)
	}
	return part.ETag, nil
}

// CompleteMultipart assembles parts into k.
func (c *Client) CompleteMultipart(
	ctx context.Context, k, uploadID string, parts []objstore.Part,
) error {
	complete := make([]minio.CompletePart, len(parts))
	for i, p := range parts {
		complete[i] = minio.CompletePart{
			PartNumber: p.Number,
			ETag:       p.ETag,
		}
	}
	_, err := c.core.CompleteMultipartUpload(ctx, c.bucket, k, uploadID,
		complete, minio.PutObjectOptions{})
	if err != nil {
		return convert(err, k)
	}
	return nil
}

// AbortMultipart discards an upload.
func (c *Client) AbortMultipart(
	ctx context.Context, k, uploadID string,
) error {
	err := c.core.AbortMultipartUpload(ctx, c.bucket, k, uploadID)
	if err != nil {
		return convert(err, k)
	}
	return nil
}

// ListMultipartUploads returns the in-progress uploads under prefix,
// following markers until the listing is complete.
func (c *Client) ListMultipartUploads(
	ctx context.Context, prefix string,
) ([]objstore.Upload, error) {
	var (
		uploads             []objstore.Upload
		keyMarker, idMarker string
	)
	for {
		res, err := c.core.ListMultipartUploads(ctx, c.bucket, prefix,
			keyMarker, idMarker, "", 1000)
		if err != nil {
			return nil, convert(err, prefix)
		}
		for _, u := range res.Uploads {
			uploads = append(uploads, objstore.Upload{
				Key:       u.Key,
				UploadID:  u.UploadID,
				Initiated: u.Initiated,
			})
		}
		if !res.IsTruncated {
			return uploads, nil
		}
		if res.NextKeyMarker == keyMarker &&
			res.NextUploadIDMarker == idMarker {
			return nil, fmt.Errorf("listing uploads under %q: "+
				"marker %q repeated", prefix, keyMarker)
		}
		keyMarker, idMarker = res.NextKeyMarker, res.NextUploadIDMarker
	}
}

func objectInfo(o minio.ObjectInfo) objstore.ObjectInfo {
	return objstore.ObjectInfo{
		Key:          o.Key,
		Size:         o.Size,
		LastModified: o.LastModified,
		ETag:         strings.Trim(o.ETag, `"`),
	}
}
