package risk

import (
	"DataSentinel/internal/model"
	"math"
	"slices"
	"time"
)

// Признаки поведения партнёра.
const (
	TraitReckless  = "reckless"
	TraitNocturnal = "nocturnal"
	TraitBursty    = "bursty"
	TraitStealthy  = "stealthy"
)

// Score вычисляет риск партнёра по числу срабатываний ловушек и объёму запросов
// за окно политики. Результат ограничен [0, MaxScore] и округлён до десятых.
// При фиксированном volume функция не убывает по trapHits.
func Score(p *Policy, trapHits int, volume int64) float64 {
	if trapHits < 0 {
		trapHits = 0
	}
	if volume < 0 {
		volume = 0
	}
	share := math.Min(float64(volume)/p.VolumeCap, 1)
	s := float64(trapHits)*p.TrapWeight + share*p.VolumeWeight
	s = math.Max(0, math.Min(s, p.MaxScore))
	return math.Round(s*10) / 10
}

// Evaluate возвращает статус партнёра по текущему баллу и числу срабатываний.
func Evaluate(p *Policy, score float64, trapHits int, manualBlock bool) string {
	switch {
	case manualBlock, trapHits >= p.RestrictTrapHits, score >= p.RestrictScore:
		return model.PartnerRestricted
	case score >= p.MonitorScore:
		return model.PartnerMonitored
	default:
		return model.PartnerActive
	}
}

// Traits описывает поведение партнёра: reckless после срабатывания ловушки,
// nocturnal при обращении в подозрительный час (UTC), bursty при всплеске запросов
// за BurstWindow, stealthy при вдвое большем всплеске без единой ловушки.
func Traits(p *Policy, now time.Time, trapHits int, burst int64) []string {
	var out []string
	if trapHits > 0 {
		out = append(out, TraitReckless)
	}
	if slices.Contains(p.SuspiciousHours, now.UTC().Hour()) {
		out = append(out, TraitNocturnal)
	}
	if burst > p.BurstThreshold {
		out = append(out, TraitBursty)
		if burst > 2*p.BurstThreshold && trapHits == 0 {
			out = append(out, TraitStealthy)
		}
	}
	return out
}
