package variants

import (
	"context"

	"github.com/turtacn/minorchanges/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// VariantsPublisher is the write side used by the request handler.
type VariantsPublisher interface {
	PublishVariants(ctx context.Context, records []variant.Record) error
}

// NewRequestHandler returns a Kafka handler that decodes molecule.requested
// events, generates variants with svc and publishes them.  Malformed events
// are dropped with a warning; publish failures are returned for retry.
func NewRequestHandler(svc *Service, pub VariantsPublisher, logger logging.Logger) kafka.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("request_handler")
	return func(ctx context.Context, msg kafka.Message) error {
		env, err := kafka.MessageToEventEnvelope(msg)
		if err != nil {
			logger.Warn("dropping malformed message", logging.Int64("offset", msg.Offset), logging.Err(err))
			return nil
		}
		if env.EventType != kafka.EventMoleculeRequest {
			logger.Debug("ignoring event", logging.String("event_type", env.EventType))
			return nil
		}
		var req kafka.MoleculeRequestPayload
		if err := env.DecodePayload(&req); err != nil || req.SMILES == "" {
			logger.Warn("dropping request without molecule", logging.String("event_id", env.EventID))
			return nil
		}

		resp, err := svc.Generate(ctx, variant.GenerateRequest{Molecules: []variant.MoleculeInput{req}})
		if err != nil {
			return err
		}
		res := resp.Results[0]
		if res.Error != "" {
			logger.Warn("request produced no result",
				logging.String("name", res.Parent), logging.String("error", res.Error))
			return nil
		}
		if err := pub.PublishVariants(ctx, res.Variants); err != nil {
			return errors.Wrap(err, errors.CodeUnknown, "failed to publish variants").WithDetail(res.Parent)
		}
		return nil
	}
}

//Personal.AI order the ending
