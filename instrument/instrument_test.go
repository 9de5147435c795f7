package instrument

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"lesiw.io/cosfs"
	"lesiw.io/cosfs/memstore"
	"lesiw.io/cosfs/objstore"
)

func unavailable(op, k string) error {
	return &objstore.ResponseError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       "SlowDown",
		Key:        k,
	}
}

func TestMetrics(t *testing.T) {
	ctx := t.Context()
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	store := memstore.New("bucket")
	c := Wrap(store, WithMetrics(m))

	if _, err := c.PutObject(
		ctx, "a.txt", strings.NewReader("hello world"), 11,
	); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	rc, err := c.GetObject(ctx, "a.txt", 0, 5)
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	if _, err := io.ReadAll(rc); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	rc.Close()
	if _, err := c.HeadObject(ctx, "missing"); !objstore.IsNotFound(err) {
		t.Fatalf("HeadObject(missing) error = %v, want not found", err)
	}
	store.SetFault(func(op, k string) error {
		if op == objstore.OpCopyObject {
			return unavailable(op, k)
		}
		return nil
	})
	if err := c.CopyObject(ctx, "a.txt", "b.txt"); err == nil {
		t.Fatal("CopyObject() error = nil, want SlowDown")
	}

	ops := []struct {
		op, result string
		want       float64
	}{
		{objstore.OpPutObject, ResultOK, 1},
		{objstore.OpGetObject, ResultOK, 1},
		{objstore.OpHeadObject, ResultNotFound, 1},
		{objstore.OpCopyObject, ResultError, 1},
		{objstore.OpCopyObject, ResultOK, 0},
	}
	for _, tt := range ops {
		got := testutil.ToFloat64(m.ops.WithLabelValues(tt.op, tt.result))
		if got != tt.want {
			t.Errorf("ops_total{op=%q,result=%q} = %v, want %v",
				tt.op, tt.result, got, tt.want)
		}
	}

	want := `
# HELP cosfs_store_bytes_total Total bytes uploaded or downloaded ` +
		`by store requests.
# TYPE cosfs_store_bytes_total counter
cosfs_store_bytes_total{op="GetObject"} 5
cosfs_store_bytes_total{op="PutObject"} 11
`
	err = testutil.GatherAndCompare(
		reg, strings.NewReader(want), "cosfs_store_bytes_total",
	)
	if err != nil {
		t.Errorf("GatherAndCompare() error = %v", err)
	}
	if got := testutil.CollectAndCount(m.latency); got != 4 {
		t.Errorf("CollectAndCount(op_duration_seconds) = %d, want 4", got)
	}
}

func TestMetricsShared(t *testing.T) {
	reg := prometheus.NewRegistry()
	m1, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	m2, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics() again error = %v", err)
	}
	if m1.ops != m2.ops {
		t.Error("NewMetrics() again registered new collectors")
	}
	c := Wrap(memstore.New("bucket"), WithMetrics(m2))
	if err := c.DeleteObject(t.Context(), "k"); err != nil {
		t.Fatalf("DeleteObject() error = %v", err)
	}
	got := testutil.ToFloat64(
		m1.ops.WithLabelValues(objstore.OpDeleteObject, ResultOK),
	)
	if got != 1 {
		t.Errorf("ops_total{op=DeleteObject} = %v, want 1", got)
	}
}

func TestSpans(t *testing.T) {
	ctx := t.Context()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	store := memstore.New("bucket")
	c := Wrap(store, WithTracerProvider(tp))

	if _, err := c.PutObject(
		ctx, "a.txt", strings.NewReader("data"), 4,
	); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	_, _ = c.HeadObject(ctx, "missing")
	store.SetFault(unavailable)
	_ = c.DeleteObject(ctx, "a.txt")

	spans := sr.Ended()
	tests := []struct {
		name string
		code codes.Code
	}{
		{"cosfs.PutObject", codes.Unset},
		{"cosfs.HeadObject", codes.Unset},
		{"cosfs.DeleteObject", codes.Error},
	}
	if len(spans) != len(tests) {
		t.Fatalf("len(Ended()) = %d, want %d", len(spans), len(tests))
	}
	for i, tt := range tests {
		s := spans[i]
		if s.Name() != tt.name {
			t.Errorf("span %d name = %q, want %q", i, s.Name(), tt.name)
		}
		if s.Status().Code != tt.code {
			t.Errorf("%s status = %v, want %v",
				tt.name, s.Status().Code, tt.code)
		}
		attrs := attribute.NewSet(s.Attributes()...)
		if v, _ := attrs.Value("cos.bucket"); v.AsString() != "bucket" {
			t.Errorf("%s cos.bucket = %q, want %q",
				tt.name, v.AsString(), "bucket")
		}
	}
	attrs := attribute.NewSet(spans[1].Attributes()...)
	if v, ok := attrs.Value("cos.not_found"); !ok || !v.AsBool() {
		t.Errorf("HeadObject cos.not_found = %v, want true", v.AsBool())
	}
	if len(spans[2].Events()) == 0 {
		t.Error("DeleteObject span recorded no error event")
	}
}

type plainClient struct{ objstore.Client }

func TestOptionalInterfaces(t *testing.T) {
	ctx := t.Context()
	store := memstore.New("bucket")

	plain := Wrap(plainClient{store})
	err := plain.DeleteObjects(ctx, []string{"a"})
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("DeleteObjects() error = %v, want ErrUnsupported", err)
	}
	_, err = plain.ListMultipartUploads(ctx, "")
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("ListMultipartUploads() error = %v, want ErrUnsupported",
			err)
	}

	c := Wrap(store)
	if err := c.DeleteObjects(ctx, []string{"a", "b"}); err != nil {
		t.Errorf("DeleteObjects() error = %v", err)
	}
	if got := store.Calls(objstore.OpDeleteObjects); got != 1 {
		t.Errorf("Calls(DeleteObjects) = %d, want 1", got)
	}
	id, err := c.InitiateMultipart(ctx, "up")
	if err != nil {
		t.Fatalf("InitiateMultipart() error = %v", err)
	}
	uploads, err := c.ListMultipartUploads(ctx, "")
	if err != nil {
		t.Fatalf("ListMultipartUploads() error = %v", err)
	}
	if len(uploads) != 1 || uploads[0].UploadID != id {
		t.Errorf("ListMultipartUploads() = %+v, want upload %s", uploads, id)
	}
	if c.Unwrap() != objstore.Client(store) {
		t.Error("Unwrap() did not return the wrapped client")
	}
}

func TestFS(t *testing.T) {
	ctx := t.Context()
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	store := memstore.New("bucket", memstore.WithMinPartSize(1))
	fsys, err := cosfs.New(
		Wrap(store, WithMetrics(m)), cosfs.WithPartSize(4),
	)
	if err != nil {
		t.Fatalf("cosfs.New() error = %v", err)
	}
	if err := fsys.WriteFile(ctx, "f.txt", []byte("0123456789")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	parts := testutil.ToFloat64(
		m.ops.WithLabelValues(objstore.OpUploadPart, ResultOK),
	)
	if parts != 3 {
		t.Errorf("ops_total{op=UploadPart} = %v, want 3", parts)
	}
	sent := testutil.ToFloat64(m.bytes.WithLabelValues(objstore.OpUploadPart))
	if sent != 10 {
		t.Errorf("bytes_total{op=UploadPart} = %v, want 10", sent)
	}
}
