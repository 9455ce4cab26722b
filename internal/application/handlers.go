package application

import (
	"context"

	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/infrastructure/router"
)

// RegisterHandlers wires the domain operations into the dispatch table.
// Each handler only decodes its payload and delegates; they share no
// mutable state.
func RegisterHandlers(r *router.Router, layouts *LayoutService, analysis *AnalysisService, health *HealthService) {
	r.Handle(protocol.TypeLayoutGenerationRequest, func(ctx context.Context, env *protocol.Envelope) (string, interface{}, error) {
		var req protocol.LayoutGenerationRequest
		if err := env.DecodePayload(&req); err != nil {
			return "", nil, err
		}
		resp, err := layouts.Generate(ctx, env.CorrelationId, req)
		if err != nil {
			return "", nil, err
		}
		return protocol.TypeLayoutGenerationResponse, resp, nil
	})

	r.Handle(protocol.TypeValidationRequest, func(ctx context.Context, env *protocol.Envelope) (string, interface{}, error) {
		var req protocol.ValidationRequest
		if err := env.DecodePayload(&req); err != nil {
			return "", nil, err
		}
		return protocol.TypeValidationResponse, layouts.Validate(ctx, req), nil
	})

	r.Handle(protocol.TypeProjectAnalysisRequest, func(ctx context.Context, env *protocol.Envelope) (string, interface{}, error) {
		var req protocol.ProjectAnalysisRequest
		if err := env.DecodePayload(&req); err != nil {
			return "", nil, err
		}
		result, err := analysis.Analyze(ctx, env.CorrelationId, req)
		if err != nil {
			return "", nil, err
		}
		return protocol.TypeProjectAnalysisResponse, protocol.ProjectAnalysisResponse{
			Success: true,
			Result:  result,
		}, nil
	})

	r.Handle(protocol.TypeHealthCheck, func(ctx context.Context, env *protocol.Envelope) (string, interface{}, error) {
		return protocol.TypeHealthCheckResponse, health.Check(), nil
	})
}
