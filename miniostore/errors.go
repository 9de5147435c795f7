package miniostore

import (
	"net/http"

	"github.com/minio/minio-go/v7"

	"lesiw.io/cosfs/objstore"
)

// convert returns err as an *objstore.ResponseError when it is an error
// response from the store. Other errors, such as network failures, are
// returned unchanged.
func convert(err error, k string) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 {
		return err
	}
	re := &objstore.ResponseError{
		StatusCode: resp.StatusCode,
		Code:       resp.Code,
		Message:    resp.Message,
		Key:        resp.Key,
	}
	if re.Key == "" {
		re.Key = k
	}
	if re.Code == "" {
		re.Code = http.StatusText(resp.StatusCode)
	}
	return re
}

func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).StatusCode == http.StatusNotFound
}
