package protocol

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/models"
)

// Gateway shapes, validates and delivers payloads per destination family.
// Delivery is simulated; a production integration would POST the payload to
// the destination's API endpoint instead.
type Gateway struct {
	logger logger.Logger
	tracer trace.Tracer
}

// NewGateway creates a new delivery gateway
func NewGateway(log logger.Logger) *Gateway {
	return &Gateway{
		logger: log,
		tracer: otel.Tracer("protocol-gateway"),
	}
}

// Deliver validates the payload shape for the destination's family and
// performs the delivery call, returning the external identifier assigned by
// the destination.
//
// Error classes: ErrUnknownFamily for an unconfigured family,
// *RejectionError for a payload-shape rejection, anything else is a
// delivery failure.
func (g *Gateway) Deliver(ctx context.Context, article *models.Article, dest *models.Destination) (string, error) {
	ctx, span := g.tracer.Start(ctx, "protocol.deliver",
		trace.WithAttributes(
			attribute.String("article_id", article.ID.String()),
			attribute.String("destination", dest.Name),
			attribute.String("family", dest.Family),
		))
	defer span.End()

	var externalID string
	var err error

	switch dest.Family {
	case models.FamilyMSN:
		externalID, err = g.deliverMSN(ctx, article)
	case models.FamilyGoogleNews:
		externalID, err = g.deliverGoogleNews(ctx, article)
	case models.FamilyAppleNews:
		externalID, err = g.deliverAppleNews(ctx, article)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFamily, dest.Family)
	}

	if err != nil {
		return "", err
	}

	g.logger.Info("payload delivered",
		logger.String("article_id", article.ID.String()),
		logger.String("destination", dest.Name),
		logger.String("family", dest.Family),
		logger.String("external_id", externalID))

	return externalID, nil
}

func (g *Gateway) deliverMSN(ctx context.Context, article *models.Article) (string, error) {
	payload := BuildMSNPayload(article)
	if err := payload.Validate(); err != nil {
		return "", err
	}
	return g.simulateDelivery(ctx, "msn", article), nil
}

func (g *Gateway) deliverGoogleNews(ctx context.Context, article *models.Article) (string, error) {
	payload := BuildGoogleNewsPayload(article)
	if err := payload.Validate(); err != nil {
		return "", err
	}
	return g.simulateDelivery(ctx, "gn", article), nil
}

func (g *Gateway) deliverAppleNews(ctx context.Context, article *models.Article) (string, error) {
	payload := BuildAppleNewsPayload(article)
	if err := payload.Validate(); err != nil {
		return "", err
	}
	return g.simulateDelivery(ctx, "an", article), nil
}

// simulateDelivery stands in for the destination API call and returns the
// external identifier the destination would assign.
func (g *Gateway) simulateDelivery(_ context.Context, prefix string, article *models.Article) string {
	return fmt.Sprintf("%s_article_%s_%d", prefix, article.ID, time.Now().Unix())
}
