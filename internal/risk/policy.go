package risk

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy: настраиваемые веса и пороги движка риска.
type Policy struct {
	TrapWeight       float64       `yaml:"trap_weight"`
	VolumeWeight     float64       `yaml:"volume_weight"`
	VolumeCap        float64       `yaml:"volume_cap"`
	VolumeWindow     time.Duration `yaml:"volume_window"`
	MaxScore         float64       `yaml:"max_score"`
	MonitorScore     float64       `yaml:"monitor_score"`
	RestrictScore    float64       `yaml:"restrict_score"`
	RestrictTrapHits int           `yaml:"restrict_trap_hits"`

	// Признаки поведения партнёра; на балл не влияют.
	SuspiciousHours []int         `yaml:"suspicious_hours"`
	BurstWindow     time.Duration `yaml:"burst_window"`
	BurstThreshold  int64         `yaml:"burst_threshold"`
}

// DefaultPolicy: три срабатывания ловушки дают 4.5 балла и автоматическое ограничение.
func DefaultPolicy() *Policy {
	return &Policy{
		TrapWeight:       1.5,
		VolumeWeight:     1.0,
		VolumeCap:        100,
		VolumeWindow:     24 * time.Hour,
		MaxScore:         10,
		MonitorScore:     2.0,
		RestrictScore:    4.0,
		RestrictTrapHits: 3,
		SuspiciousHours:  []int{0, 1, 2, 3, 4, 5, 6},
		BurstWindow:      10 * time.Minute,
		BurstThreshold:   5,
	}
}

// Validate проверяет согласованность порогов.
func (p *Policy) Validate() error {
	switch {
	case p.TrapWeight <= 0:
		return errors.New("trap_weight must be positive")
	case p.VolumeWeight < 0:
		return errors.New("volume_weight must not be negative")
	case p.VolumeCap <= 0:
		return errors.New("volume_cap must be positive")
	case p.VolumeWindow <= 0:
		return errors.New("volume_window must be positive")
	case p.MaxScore <= 0:
		return errors.New("max_score must be positive")
	case p.MonitorScore > p.RestrictScore:
		return fmt.Errorf("monitor_score %.1f above restrict_score %.1f", p.MonitorScore, p.RestrictScore)
	case p.RestrictTrapHits <= 0:
		return errors.New("restrict_trap_hits must be positive")
	case p.BurstWindow <= 0:
		return errors.New("burst_window must be positive")
	case p.BurstThreshold <= 0:
		return errors.New("burst_threshold must be positive")
	}
	for _, h := range p.SuspiciousHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("suspicious hour %d out of range", h)
		}
	}
	return nil
}

// LoadPolicy читает политику из YAML. Пустой путь или отсутствующий файл дают значения
// по умолчанию; поля, не указанные в файле, сохраняют значения по умолчанию.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return nil, fmt.Errorf("failed to read risk policy: %w", err)
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse risk policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk policy %s: %w", path, err)
	}
	return p, nil
}
