package models

import "time"

// FileMetadata describes one uploaded object. Key is the content-addressed
// storage identifier (globally unique). Method is the encryption method that
// was active at upload time and is frozen: later changes to the user's
// AWSConfig must not affect how this object is retrieved.
type FileMetadata struct {
	ID        string
	UserID    string
	Key       string
	FileName  string
	Method    EncryptionMethod
	CreatedAt time.Time
}
