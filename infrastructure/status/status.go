// Package status exposes the read-only liveness surface. It derives
// everything from the session registry and the transport's connection
// counter; nothing here participates in the relay's behavioral
// contract.
package status

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/process"
)

type ConnectionCounter interface {
	Connections() int64
}

type SessionCounter interface {
	ActiveCount() int
}

type Server struct {
	log         *slog.Logger
	sessions    SessionCounter
	connections ConnectionCounter
	startedAt   time.Time
}

func NewServer(log *slog.Logger, sessions SessionCounter, connections ConnectionCounter) *Server {
	return &Server{
		log:         log,
		sessions:    sessions,
		connections: connections,
		startedAt:   time.Now().UTC(),
	}
}

type Report struct {
	ActiveSessions int     `json:"active_sessions"`
	Connections    int64   `json:"connections"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	RSSBytes       uint64  `json:"rss_bytes,omitempty"`
	CPUPercent     float64 `json:"cpu_percent,omitempty"`
}

func (s *Server) Register(app *fiber.App) {
	app.Get("/healthz", s.health)
	app.Get("/status", s.status)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.SendString("ok")
}

func (s *Server) status(c *fiber.Ctx) error {
	report := Report{
		ActiveSessions: s.sessions.ActiveCount(),
		Connections:    s.connections.Connections(),
		UptimeSeconds:  time.Since(s.startedAt).Seconds(),
	}

	// Process metrics are decorative; a probe failure must not break
	// the endpoint.
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfo(); err == nil {
			report.RSSBytes = mem.RSS
		}
		if cpu, err := p.CPUPercent(); err == nil {
			report.CPUPercent = cpu
		}
	} else {
		s.log.Debug("Process metrics unavailable", "error", err)
	}

	return c.JSON(report)
}
