package payment

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/infrastructure/storage"
	"github.com/rentdesk/backend/internal/infrastructure/telemetry"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const pngContentType = "image/png"

var _ appbilling.ArtifactGenerator = (*QRArtifactGenerator)(nil)

// QRArtifactGenerator renders payment intents as PNG QR codes and writes them
// to an object store under a random key.
type QRArtifactGenerator struct {
	config UPIConfig
	store  storage.ObjectStorage
	logger *zap.Logger
	newKey func() string
}

// NewQRArtifactGenerator creates a QRArtifactGenerator
func NewQRArtifactGenerator(config UPIConfig, store storage.ObjectStorage, logger *zap.Logger) (*QRArtifactGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("artifact store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := strings.Trim(config.KeyPrefix, "/")
	return &QRArtifactGenerator{
		config: config,
		store:  store,
		logger: logger,
		newKey: func() string {
			return path.Join(prefix, uuid.NewString()+".png")
		},
	}, nil
}

// Intent builds the payment-intent URI for a request
func (g *QRArtifactGenerator) Intent(req appbilling.ArtifactRequest) string {
	return billing.PaymentIntent{
		Scheme:      g.config.Scheme,
		PayeeHandle: req.PayeeHandle,
		PayeeName:   req.PayeeName,
		Amount:      req.Amount,
		Currency:    g.config.Currency,
		Note:        req.Note,
	}.String()
}

// Generate renders the request's intent and stores the image.
// The returned path is relative to the store; URL construction is left to callers.
func (g *QRArtifactGenerator) Generate(ctx context.Context, req appbilling.ArtifactRequest) (*appbilling.Artifact, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_artifact", "generate")
	defer span.End()

	if strings.TrimSpace(req.PayeeHandle) == "" {
		err := billing.ErrArtifactWrite.WithMessage("payee handle is not configured")
		telemetry.RecordError(span, err)
		return nil, err
	}

	intent := g.Intent(req)

	png, err := qrcode.Encode(intent, qrcode.Medium, g.config.Size)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, billing.ErrArtifactWrite.WithMessage("failed to render payment QR").WithCause(err)
	}

	key := g.newKey()
	telemetry.SetAttributes(span, telemetry.SpanAttrArtifactKey, key)

	if err := g.store.Upload(ctx, key, png, pngContentType); err != nil {
		telemetry.RecordError(span, err)
		g.logger.Warn("Payment artifact upload failed", zap.String("key", key), zap.Error(err))
		return nil, billing.ErrArtifactWrite.WithCause(err)
	}

	g.logger.Debug("Payment artifact stored", zap.String("key", key), zap.Int("bytes", len(png)))
	return &appbilling.Artifact{Intent: intent, Path: key}, nil
}

// Discard deletes a stored artifact image
func (g *QRArtifactGenerator) Discard(ctx context.Context, key string) error {
	if err := g.store.DeleteObject(ctx, key); err != nil {
		return billing.ErrArtifactWrite.WithMessage("failed to discard payment QR").WithCause(err)
	}
	g.logger.Debug("Payment artifact discarded", zap.String("key", key))
	return nil
}
