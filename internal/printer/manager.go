package printer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fondaapp/print-fulfillment/internal/printjob"
)

// TransportKind selects how a target is reached.
type TransportKind string

const (
	KindUSB     TransportKind = "usb"
	KindNetwork TransportKind = "network"
)

// TargetConfig holds the transport parameters for one logical target.
type TargetConfig struct {
	Kind    TransportKind
	Path    string
	Host    string
	Port    int
	Timeout time.Duration
}

// Config maps logical targets to their transports.
type Config struct {
	Targets map[printjob.Target]TargetConfig
}

// Manager resolves a logical target into a validated ESC/POS printer handle.
type Manager struct {
	config     Config
	logger     *slog.Logger
	strategies []usbStrategy
}

// NewManager creates a connection manager. All state is injected; there are
// no package-level clients.
func NewManager(config Config, logger *slog.Logger) *Manager {
	return &Manager{
		config:     config,
		logger:     logger,
		strategies: defaultUSBStrategies(),
	}
}

// Connect returns a ready-to-write printer for the target, or a
// *ConnectionError describing every attempt that was made.
func (m *Manager) Connect(target printjob.Target) (*Printer, error) {
	cfg, ok := m.config.Targets[target]
	if !ok {
		return nil, &ConnectionError{
			Target:   string(target),
			Attempts: []Attempt{{Strategy: "config", Reason: "target not configured"}},
		}
	}

	switch cfg.Kind {
	case KindNetwork:
		return m.connectNetwork(target, cfg)
	case KindUSB:
		return m.connectUSB(target, cfg)
	}

	return nil, &ConnectionError{
		Target:   string(target),
		Attempts: []Attempt{{Strategy: "config", Reason: fmt.Sprintf("unknown transport kind %q", cfg.Kind)}},
	}
}

// connectNetwork has no fallback chain: missing parameters or a failed dial
// fail fast.
func (m *Manager) connectNetwork(target printjob.Target, cfg TargetConfig) (*Printer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, &ConnectionError{
			Target:   string(target),
			Attempts: []Attempt{{Strategy: "network", Reason: "host and port are required"}},
		}
	}

	t, err := dialNetwork(cfg.Host, cfg.Port, cfg.Timeout)
	if err != nil {
		return nil, &ConnectionError{
			Target:   string(target),
			Attempts: []Attempt{{Strategy: "network", Reason: err.Error()}},
		}
	}

	p, err := NewPrinter(t)
	if err != nil {
		_ = t.Close()
		return nil, &ConnectionError{
			Target:   string(target),
			Attempts: []Attempt{{Strategy: "network", Reason: err.Error()}},
		}
	}

	m.logger.Debug("printer connected",
		slog.String("target", string(target)),
		slog.String("transport", "network"),
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
	)
	return p, nil
}

// connectUSB walks the discovery chain in priority order. Each candidate
// handle must survive ESC/POS printer construction before it wins; the first
// success short-circuits the rest.
func (m *Manager) connectUSB(target printjob.Target, cfg TargetConfig) (*Printer, error) {
	var attempts []Attempt

	for _, s := range m.strategies {
		t, err := s.attempt(cfg.Path)
		if err != nil {
			attempts = append(attempts, Attempt{Strategy: s.name(), Reason: err.Error()})
			continue
		}

		p, err := NewPrinter(t)
		if err != nil {
			_ = t.Close()
			attempts = append(attempts, Attempt{Strategy: s.name(), Reason: err.Error()})
			continue
		}

		m.logger.Debug("printer connected",
			slog.String("target", string(target)),
			slog.String("transport", "usb"),
			slog.String("strategy", s.name()),
		)
		return p, nil
	}

	return nil, &ConnectionError{Target: string(target), Attempts: attempts}
}
