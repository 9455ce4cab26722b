package application

import (
	"time"

	"github.com/planwright/planwright/internal/domain/protocol"
)

// HealthService answers health_check requests.
type HealthService struct {
	version string
	started time.Time
}

func NewHealthService(version string) *HealthService {
	return &HealthService{version: version, started: time.Now()}
}

// Check reports the companion's liveness.
func (s *HealthService) Check() protocol.HealthCheckResponse {
	return protocol.HealthCheckResponse{
		Status:    "healthy",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}
