package s3

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"todo-backend/application/ports"
	apperrors "todo-backend/pkg/errors"
	"todo-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// MaxURLExpiration is the longest lifetime SigV4 allows for a presigned URL
const MaxURLExpiration = 7 * 24 * time.Hour

// AttachmentSigner issues SigV4 presigned PutObject URLs for todo attachments.
// An issued URL stays valid until it expires; there is no revocation.
type AttachmentSigner struct {
	presigner *s3.PresignClient
	bucket    string
	expires   time.Duration
	logger    *zap.Logger
}

var _ ports.AttachmentSigner = (*AttachmentSigner)(nil)

// NewAttachmentSigner creates a signer for the bucket. The expiration must be
// positive and within the SigV4 limit; anything else is a configuration error.
func NewAttachmentSigner(client *s3.Client, bucket string, expires time.Duration, clock utils.Clock, logger *zap.Logger) (*AttachmentSigner, error) {
	if bucket == "" {
		return nil, apperrors.NewConfigError("attachment bucket is not configured")
	}
	if expires <= 0 || expires > MaxURLExpiration {
		return nil, apperrors.NewConfigError(fmt.Sprintf("signed url expiration %s is out of range", expires))
	}
	if clock == nil {
		clock = utils.SystemClock
	}

	presignClient := s3.NewPresignClient(client, func(o *s3.PresignOptions) {
		o.Presigner = &clockPresigner{signer: v4.NewSigner(), clock: clock}
	})

	return &AttachmentSigner{
		presigner: presignClient,
		bucket:    bucket,
		expires:   expires,
		logger:    logger,
	}, nil
}

// IssueUploadURL returns a URL permitting one PUT of the object keyed by itemID
func (s *AttachmentSigner) IssueUploadURL(ctx context.Context, itemID string) (string, error) {
	s.logger.Info("Creating attachment presigned url",
		zap.String("bucket", s.bucket),
		zap.String("todoId", itemID),
		zap.Duration("expires", s.expires),
	)

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(itemID),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		s.logger.Error("Error signing attachment upload url",
			zap.String("bucket", s.bucket),
			zap.String("todoId", itemID),
			zap.Error(err),
		)
		return "", apperrors.NewSigningError(err)
	}

	return req.URL, nil
}

// clockPresigner signs with the time from its clock so issue times are controllable
type clockPresigner struct {
	signer *v4.Signer
	clock  utils.Clock
}

// PresignHTTP implements s3.HTTPPresignerV4
func (p *clockPresigner) PresignHTTP(
	ctx context.Context,
	credentials aws.Credentials,
	r *http.Request,
	payloadHash string,
	service string,
	region string,
	_ time.Time,
	optFns ...func(*v4.SignerOptions),
) (string, http.Header, error) {
	return p.signer.PresignHTTP(ctx, credentials, r, payloadHash, service, region, p.clock(), optFns...)
}
