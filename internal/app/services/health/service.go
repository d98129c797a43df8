// Package health reports process and host health for the readiness
// endpoint.
package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Status is a point-in-time health snapshot.
type Status struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	MemoryPercent float64 `json:"memory_percent"`
	CPUPercent    float64 `json:"cpu_percent"`
}

// Pinger reports backing-store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service assembles health snapshots.
type Service struct {
	started time.Time
	pinger  Pinger // nil when the store has no ping
	log     *logger.Logger
}

// New constructs a health service. pinger may be nil.
func New(pinger Pinger, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("health")
	}
	return &Service{started: time.Now(), pinger: pinger, log: log}
}

// Check returns the current snapshot. Host metric failures degrade to zero
// values; only an unreachable backing store marks the service unhealthy.
func (s *Service) Check(ctx context.Context) Status {
	st := Status{Status: "ok", UptimeSeconds: time.Since(s.started).Seconds()}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		st.MemoryPercent = vm.UsedPercent
	} else {
		s.log.WithError(err).Debug("memory snapshot failed")
	}
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		st.CPUPercent = percents[0]
	} else if err != nil {
		s.log.WithError(err).Debug("cpu snapshot failed")
	}

	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			s.log.WithError(err).Warn("store ping failed")
			st.Status = "degraded"
		}
	}
	return st
}
