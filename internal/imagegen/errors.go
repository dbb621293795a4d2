package imagegen

import "fmt"

// ValidationError rejects a request before the provider is called.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RefusalError reports that the provider declined to produce images, either
// because a guardrail intervened or because the response carried none.
type RefusalError struct {
	Message    string
	Intervened bool
}

func (e *RefusalError) Error() string {
	return e.Message
}

// UploadError reports a failure inside the upload loop. Images stored before
// the failure stay in the bucket.
type UploadError struct {
	Index  int
	Stored int
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload image %d (stored %d): %v", e.Index, e.Stored, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
