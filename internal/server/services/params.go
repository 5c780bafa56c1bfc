// Package services contains server-side business logic: credential
// lifecycle, encryption-method policy, file transfer orchestration, and
// user authentication.
package services

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/s3vault/internal/common"
	"github.com/dmitrijs2005/s3vault/internal/cryptox"
	"github.com/dmitrijs2005/s3vault/internal/server/models"
	"github.com/dmitrijs2005/s3vault/internal/server/storage"
)

// ResolveEncryptionParams maps an encryption method onto the exact S3
// request parameters for that method, decrypting the relevant stored secret
// on the way. It is a pure function of its inputs plus the codec.
//
// method is passed explicitly rather than taken from cfg because download
// must honor the method recorded on the file's metadata row, not the user's
// current setting.
func ResolveEncryptionParams(cfg *models.AWSConfig, method models.EncryptionMethod, codec *cryptox.SecretCodec) (*storage.EncryptionParams, error) {
	switch method {
	case models.MethodAWSManaged:
		return &storage.EncryptionParams{ServerSideEncryption: "AES256"}, nil

	case models.MethodAWSKMS:
		if cfg.KMSKeyID == nil {
			return nil, fmt.Errorf("%w: kms key id is not set", common.ErrConfigIncomplete)
		}
		keyID, err := codec.Decrypt(*cfg.KMSKeyID)
		if err != nil {
			return nil, err
		}
		return &storage.EncryptionParams{
			ServerSideEncryption: "aws:kms",
			KMSKeyID:             keyID,
		}, nil

	case models.MethodCustom:
		if cfg.CustomKey == nil {
			return nil, fmt.Errorf("%w: customer key is not set", common.ErrConfigIncomplete)
		}
		key, err := codec.Decrypt(*cfg.CustomKey)
		if err != nil {
			return nil, err
		}
		if key == "" {
			return nil, fmt.Errorf("%w: customer key is empty", common.ErrConfigIncomplete)
		}
		// The provider verifies key possession against an MD5 digest of the
		// raw key, base64-encoded; the key itself is never stored remotely.
		digest := md5.Sum([]byte(key))
		return &storage.EncryptionParams{
			CustomerAlgorithm: "AES256",
			CustomerKey:       key,
			CustomerKeyMD5:    base64.StdEncoding.EncodeToString(digest[:]),
		}, nil

	default:
		return nil, fmt.Errorf("unknown encryption method %q", method)
	}
}
