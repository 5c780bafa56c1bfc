package storage

import "context"

// OpRecorder receives one observation per storage call.
type OpRecorder interface {
	ObserveStorageOp(operation string, err error)
}

// InstrumentedStore decorates an ObjectStore with per-operation metrics.
type InstrumentedStore struct {
	next     ObjectStore
	recorder OpRecorder
}

// NewInstrumentedStore wraps next so every call is recorded on recorder.
func NewInstrumentedStore(next ObjectStore, recorder OpRecorder) *InstrumentedStore {
	return &InstrumentedStore{next: next, recorder: recorder}
}

func (s *InstrumentedStore) PutObject(ctx context.Context, creds Credentials, bucket, key string, body []byte, contentType string, enc *EncryptionParams) error {
	err := s.next.PutObject(ctx, creds, bucket, key, body, contentType, enc)
	s.recorder.ObserveStorageOp("put_object", err)
	return err
}

func (s *InstrumentedStore) GetObject(ctx context.Context, creds Credentials, bucket, key string, enc *EncryptionParams) ([]byte, error) {
	data, err := s.next.GetObject(ctx, creds, bucket, key, enc)
	s.recorder.ObserveStorageOp("get_object", err)
	return data, err
}

func (s *InstrumentedStore) ListObjects(ctx context.Context, creds Credentials, bucket string) error {
	err := s.next.ListObjects(ctx, creds, bucket)
	s.recorder.ObserveStorageOp("list_objects", err)
	return err
}

func (s *InstrumentedStore) ListBuckets(ctx context.Context, creds Credentials) error {
	err := s.next.ListBuckets(ctx, creds)
	s.recorder.ObserveStorageOp("list_buckets", err)
	return err
}
