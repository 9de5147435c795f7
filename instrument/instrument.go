// Package instrument wraps an [objstore.Client] with Prometheus metrics
// and OpenTelemetry spans.
//
// Every request records one span named after its operation, such as
// "cosfs.PutObject", and updates the metrics:
//
//   - cosfs_store_ops_total{op,result}
//   - cosfs_store_bytes_total{op}
//   - cosfs_store_op_duration_seconds{op}
//
// Bytes are counted for PutObject and UploadPart as sent, and for
// GetObject as the body is read.
package instrument

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lesiw.io/cosfs/objstore"
)

// TracerName is the instrumentation scope of the spans.
const TracerName = "lesiw.io/cosfs/instrument"

// A Client is an instrumented [objstore.Client].
//
// It implements [objstore.BatchDeleter] and [objstore.UploadLister]
// by forwarding to the wrapped client, returning [errors.ErrUnsupported]
// when the wrapped client lacks the capability.
type Client struct {
	inner   objstore.Client
	metrics *Metrics
	tracer  trace.Tracer
}

var (
	_ objstore.BatchDeleter = (*Client)(nil)
	_ objstore.UploadLister = (*Client)(nil)
)

// An Option configures a Client.
type Option func(*Client)

// WithMetrics records requests in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracerProvider creates spans from tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(TracerName) }
}

// Wrap returns client instrumented according to opts.
func Wrap(client objstore.Client, opts ...Option) *Client {
	c := &Client{inner: client}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(TracerName)
	}
	return c
}

// Unwrap returns the wrapped client.
func (c *Client) Unwrap() objstore.Client { return c.inner }

// Bucket returns the bucket of the wrapped client.
func (c *Client) Bucket() string { return c.inner.Bucket() }

// A request is one in-flight store operation.
type request struct {
	c     *Client
	op    string
	span  trace.Span
	start time.Time
}

func (c *Client) begin(
	ctx context.Context, op, k string, attrs ...attribute.KeyValue,
) (context.Context, *request) {
	attrs = append(attrs,
		attribute.String("cos.bucket", c.inner.Bucket()),
		attribute.String("cos.key", k),
	)
	ctx, span := c.tracer.Start(ctx, "cosfs."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, &request{c: c, op: op, span: span, start: time.Now()}
}

// end finishes the request after it moved n bytes.
func (r *request) end(n int64, err error) {
	if r.c.metrics != nil {
		r.c.metrics.Observe(r.op, n, err, time.Since(r.start))
	}
	if n > 0 {
		r.span.SetAttributes(attribute.Int64("cos.bytes", n))
	}
	switch {
	case err == nil:
	case objstore.IsNotFound(err):
		r.span.SetAttributes(attribute.Bool("cos.not_found", true))
	default:
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
	}
	r.span.End()
}

func (c *Client) PutObject(
	ctx context.Context, k string, r io.Reader, size int64,
) (string, error) {
	ctx, req := c.begin(ctx, objstore.OpPutObject, k,
		attribute.Int64("cos.size", size))
	etag, err := c.inner.PutObject(ctx, k, r, size)
	req.end(sent(size, err), err)
	return etag, err
}

func (c *Client) GetObject(
	ctx context.Context, k string, offset, length int64,
) (io.ReadCloser, error) {
	ctx, req := c.begin(ctx, objstore.OpGetObject, k,
		attribute.Int64("cos.offset", offset),
		attribute.Int64("cos.length", length),
	)
	rc, err := c.inner.GetObject(ctx, k, offset, length)
	req.end(0, err)
	if err != nil || c.metrics == nil {
		return rc, err
	}
	return &countingReader{ReadCloser: rc, m: c.metrics}, nil
}

func (c *Client) HeadObject(
	ctx context.Context, k string,
) (objstore.ObjectInfo, error) {
	ctx, req := c.begin(ctx, objstore.OpHeadObject, k)
	info, err := c.inner.HeadObject(ctx, k)
	req.end(0, err)
	return info, err
}

func (c *Client) ListObjects(
	ctx context.Context, in objstore.ListInput,
) (objstore.ListOutput, error) {
	ctx, req := c.begin(ctx, objstore.OpListObjects, in.Prefix,
		attribute.String("cos.delimiter", in.Delimiter),
		attribute.Bool("cos.continued", in.ContinuationToken != ""),
	)
	out, err := c.inner.ListObjects(ctx, in)
	if err == nil {
		req.span.SetAttributes(
			attribute.Int("cos.objects", len(out.Objects)),
			attribute.Int("cos.prefixes", len(out.CommonPrefixes)),
		)
	}
	req.end(0, err)
	return out, err
}

func (c *Client) DeleteObject(ctx context.Context, k string) error {
	ctx, req := c.begin(ctx, objstore.OpDeleteObject, k)
	err := c.inner.DeleteObject(ctx, k)
	req.end(0, err)
	return err
}

func (c *Client) DeleteObjects(ctx context.Context, keys []string) error {
	bd, ok := c.inner.(objstore.BatchDeleter)
	if !ok {
		return errors.ErrUnsupported
	}
	var first string
	if len(keys) > 0 {
		first = keys[0]
	}
	ctx, req := c.begin(ctx, objstore.OpDeleteObjects, first,
		attribute.Int("cos.keys", len(keys)))
	err := bd.DeleteObjects(ctx, keys)
	if errors.Is(err, errors.ErrUnsupported) {
		req.span.End()
		return err
	}
	req.end(0, err)
	return err
}

func (c *Client) CopyObject(ctx context.Context, src, dst string) error {
	ctx, req := c.begin(ctx, objstore.OpCopyObject, dst,
		attribute.String("cos.source", src))
	err := c.inner.CopyObject(ctx, src, dst)
	req.end(0, err)
	return err
}

func (c *Client) InitiateMultipart(
	ctx context.Context, k string,
) (string, error) {
	ctx, req := c.begin(ctx, objstore.OpInitiateMultipart, k)
	id, err := c.inner.InitiateMultipart(ctx, k)
	if err == nil {
		req.span.SetAttributes(attribute.String("cos.upload_id", id))
	}
	req.end(0, err)
	return id, err
}

func (c *Client) UploadPart(
	ctx context.Context, k, uploadID string, number int,
	r io.Reader, size int64,
) (string, error) {
	ctx, req := c.begin(ctx, objstore.OpUploadPart, k,
		attribute.String("cos.upload_id", uploadID),
		attribute.Int("cos.part", number),
		attribute.Int64("cos.size", size),
	)
	etag, err := c.inner.UploadPart(ctx, k, uploadID, number, r, size)
	req.end(sent(size, err), err)
	return etag, err
}

func (c *Client) CompleteMultipart(
	ctx context.Context, k, uploadID string, parts []objstore.Part,
) error {
	ctx, req := c.begin(ctx, objstore.OpCompleteMultipart, k,
		attribute.String("cos.upload_id", uploadID),
		attribute.Int("cos.parts", len(parts)),
	)
	err := c.inner.CompleteMultipart(ctx, k, uploadID, parts)
	req.end(0, err)
	return err
}

func (c *Client) AbortMultipart(
	ctx context.Context, k, uploadID string,
) error {
	ctx, req := c.begin(ctx, objstore.OpAbortMultipart, k,
		attribute.String("cos.upload_id", uploadID))
	err := c.inner.AbortMultipart(ctx, k, uploadID)
	req.end(0, err)
	return err
}

func (c *Client) ListMultipartUploads(
	ctx context.Context, prefix string,
) ([]objstore.Upload, error) {
	ul, ok := c.inner.(objstore.UploadLister)
	if !ok {
		return nil, errors.ErrUnsupported
	}
	ctx, req := c.begin(ctx, objstore.OpListMultipartUploads, prefix)
	uploads, err := ul.ListMultipartUploads(ctx, prefix)
	if errors.Is(err, errors.ErrUnsupported) {
		req.span.End()
		return nil, err
	}
	req.end(0, err)
	return uploads, err
}

func sent(size int64, err error) int64 {
	if err != nil {
		return 0
	}
	return size
}

type countingReader struct {
	io.ReadCloser
	m *Metrics
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.m.addBytes(objstore.OpGetObject, int64(n))
	return n, err
}
