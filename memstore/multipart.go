package memstore

import (
	"bytes"
	"cmp"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"lesiw.io/cosfs/objstore"
)

// maxPartNumber is the highest part number a store accepts.
const maxPartNumber = 10000

// upload is an in-progress multipart upload.
type upload struct {
	key       string
	initiated time.Time
	parts     map[int]*object
}

func noSuchUpload(k, id string) error {
	return &objstore.ResponseError{
		StatusCode: http.StatusNotFound,
		Code:       objstore.CodeNoSuchUpload,
		Message:    "upload " + id + " does not exist",
		Key:        k,
	}
}

func (s *Store) lookupUpload(k, id string) (*upload, error) {
	u, ok := s.uploads[id]
	if !ok || u.key != k {
		return nil, noSuchUpload(k, id)
	}
	return u, nil
}

// InitiateMultipart starts a multipart upload to k.
func (s *Store) InitiateMultipart(
	ctx context.Context, k string,
) (string, error) {
	if err := s.request(ctx, objstore.OpInitiateMultipart, k); err != nil {
		return "", err
	}

	s.Lock()
	defer s.Unlock()

	s.nextUpload++
	id := strconv.Itoa(s.nextUpload)
	s.uploads[id] = &upload{
		key:       k,
		initiated: time.Now(),
		parts:     make(map[int]*object),
	}
	return id, nil
}

// UploadPart stores size bytes from r as part number of the upload.
func (s *Store) UploadPart(
	ctx context.Context, k, uploadID string, number int,
	r io.Reader, size int64,
) (string, error) {
	if err := s.request(ctx, objstore.OpUploadPart, k); err != nil {
		return "", err
	}
	if number < 1 || number > maxPartNumber {
		return "", &objstore.ResponseError{
			StatusCode: http.StatusBadRequest,
			Code:       objstore.CodeInvalidArgument,
			Message:    fmt.Sprintf("part number %d out of range", number),
			Key:        k,
		}
	}
	data, err := readBody(r, size)
	if err != nil {
		return "", err
	}

	s.Lock()
	defer s.Unlock()

	u, err := s.lookupUpload(k, uploadID)
	if err != nil {
		return "", err
	}
	p := &object{data: data, modTime: time.Now(), etag: etag(data)}
	u.parts[number] = p
	return p.etag, nil
}

// CompleteMultipart assembles parts into k and ends the upload.
func (s *Store) CompleteMultipart(
	ctx context.Context, k, uploadID string, parts []objstore.Part,
) error {
	err := s.request(ctx, objstore.OpCompleteMultipart, k)
	if err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	u, err := s.lookupUpload(k, uploadID)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return &objstore.ResponseError{
			StatusCode: http.StatusBadRequest,
			Code:       objstore.CodeMalformedXML,
			Message:    "no parts",
			Key:        k,
		}
	}

	var data bytes.Buffer
	sums := make([]byte, 0, md5.Size*len(parts))
	for i, part := range parts {
		if i > 0 && part.Number <= parts[i-1].Number {
			return &objstore.ResponseError{
				StatusCode: http.StatusBadRequest,
				Code:       objstore.CodeInvalidPartOrder,
				Message:    "parts must be in ascending order",
				Key:        k,
			}
		}
		p, ok := u.parts[part.Number]
		if !ok || p.etag != strings.Trim(part.ETag, `"`) {
			return &objstore.ResponseError{
				StatusCode: http.StatusBadRequest,
				Code:       objstore.CodeInvalidPart,
				Message:    fmt.Sprintf("part %d not found", part.Number),
				Key:        k,
			}
		}
		last := i == len(parts)-1
		if !last && int64(len(p.data)) < s.minPartSize {
			return &objstore.ResponseError{
				StatusCode: http.StatusBadRequest,
				Code:       objstore.CodeEntityTooSmall,
				Message: fmt.Sprintf(
					"part %d is %d bytes, want at least %d",
					part.Number, len(p.data), s.minPartSize,
				),
				Key: k,
			}
		}
		data.Write(p.data)
		sum, _ := hex.DecodeString(p.etag)
		sums = append(sums, sum...)
	}

	total := md5.Sum(sums)
	s.objects[k] = &object{
		data:    data.Bytes(),
		modTime: time.Now(),
		etag: fmt.Sprintf(
			"%s-%d", hex.EncodeToString(total[:]), len(parts),
		),
	}
	delete(s.uploads, uploadID)
	return nil
}

// AbortMultipart discards the upload and its parts.
func (s *Store) AbortMultipart(
	ctx context.Context, k, uploadID string,
) error {
	if err := s.request(ctx, objstore.OpAbortMultipart, k); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	if _, err := s.lookupUpload(k, uploadID); err != nil {
		return err
	}
	delete(s.uploads, uploadID)
	return nil
}

// ListMultipartUploads returns the in-progress uploads under prefix,
// ordered by key and initiation time.
func (s *Store) ListMultipartUploads(
	ctx context.Context, prefix string,
) ([]objstore.Upload, error) {
	err := s.request(ctx, objstore.OpListMultipartUploads, prefix)
	if err != nil {
		return nil, err
	}

	s.RLock()
	defer s.RUnlock()

	var uploads []objstore.Upload
	for id, u := range s.uploads {
		if strings.HasPrefix(u.key, prefix) {
			uploads = append(uploads, objstore.Upload{
				Key:       u.key,
				UploadID:  id,
				Initiated: u.initiated,
			})
		}
	}
	slices.SortFunc(uploads, func(a, b objstore.Upload) int {
		return cmp.Or(
			strings.Compare(a.Key, b.Key),
			a.Initiated.Compare(b.Initiated),
			strings.Compare(a.UploadID, b.UploadID),
		)
	})
	return uploads, nil
}
