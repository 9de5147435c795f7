package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"lesiw.io/cosfs/objstore"
)

// PutObject stores size bytes from r as k.
func (s *Store) PutObject(
	ctx context.Context, k string, r io.Reader, size int64,
) (string, error) {
	if err := s.request(ctx, objstore.OpPutObject, k); err != nil {
		return "", err
	}
	data, err := readBody(r, size)
	if err != nil {
		return "", err
	}

	s.Lock()
	defer s.Unlock()

	o := &object{data: data, modTime: time.Now(), etag: etag(data)}
	s.objects[k] = o
	return o.etag, nil
}

// GetObject returns length bytes of k starting at offset.
func (s *Store) GetObject(
	ctx context.Context, k string, offset, length int64,
) (io.ReadCloser, error) {
	if err := s.request(ctx, objstore.OpGetObject, k); err != nil {
		return nil, err
	}

	s.RLock()
	defer s.RUnlock()

	o, ok := s.objects[k]
	if !ok {
		return nil, objstore.NotFound(k)
	}
	size := int64(len(o.data))
	if offset < 0 || (offset > 0 && offset >= size) {
		return nil, &objstore.ResponseError{
			StatusCode: http.StatusRequestedRangeNotSatisfiable,
			Code:       objstore.CodeInvalidRange,
			Message: fmt.Sprintf(
				"offset %d outside object of size %d", offset, size,
			),
			Key: k,
		}
	}
	end := size
	if length >= 0 && offset+length < size {
		end = offset + length
	}
	data := bytes.Clone(o.data[offset:end])
	return io.NopCloser(bytes.NewReader(data)), nil
}

// HeadObject returns the metadata of k.
func (s *Store) HeadObject(
	ctx context.Context, k string,
) (objstore.ObjectInfo, error) {
	if err := s.request(ctx, objstore.OpHeadObject, k); err != nil {
		return objstore.ObjectInfo{}, err
	}

	s.RLock()
	defer s.RUnlock()

	o, ok := s.objects[k]
	if !ok {
		return objstore.ObjectInfo{}, objstore.NotFound(k)
	}
	return o.info(k), nil
}

// DeleteObject removes k if present.
func (s *Store) DeleteObject(ctx context.Context, k string) error {
	if err := s.request(ctx, objstore.OpDeleteObject, k); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	delete(s.objects, k)
	return nil
}

// DeleteObjects removes up to objstore.MaxDeleteKeys keys.
func (s *Store) DeleteObjects(ctx context.Context, keys []string) error {
	var first string
	if len(keys) > 0 {
		first = keys[0]
	}
	if err := s.request(ctx, objstore.OpDeleteObjects, first); err != nil {
		return err
	}
	if len(keys) == 0 || len(keys) > objstore.MaxDeleteKeys {
		return &objstore.ResponseError{
			StatusCode: http.StatusBadRequest,
			Code:       objstore.CodeMalformedXML,
			Message: fmt.Sprintf(
				"delete of %d keys, want 1 to %d",
				len(keys), objstore.MaxDeleteKeys,
			),
		}
	}

	s.Lock()
	defer s.Unlock()

	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

// CopyObject copies src to dst.
func (s *Store) CopyObject(ctx context.Context, src, dst string) error {
	if err := s.request(ctx, objstore.OpCopyObject, src); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	o, ok := s.objects[src]
	if !ok {
		return objstore.NotFound(src)
	}
	s.objects[dst] = &object{
		data:    bytes.Clone(o.data),
		modTime: time.Now(),
		etag:    o.etag,
	}
	return nil
}
