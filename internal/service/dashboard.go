package service

import (
	"DataSentinel/internal/model"
	"DataSentinel/internal/repo"
	"DataSentinel/internal/risk"
	"context"
)

// PartnerActivity: сводка по партнёру.
type PartnerActivity struct {
	PartnerID    string   `json:"partner_id"`
	Name         string   `json:"name"`
	RiskScore    float64  `json:"risk_score"`
	TrapHits     int      `json:"trap_hits"`
	Status       string   `json:"status"`
	ManualBlock  bool     `json:"manual_block"`
	Volume       int64    `json:"request_volume"`
	BlockedUsers []string `json:"blocked_users"`
}

// UserActivity: сводка по пользователю; флаги согласия эффективные, с учётом срока.
type UserActivity struct {
	UserID            string `json:"user_id"`
	Login             string `json:"login"`
	Role              string `json:"role"`
	WatermarkEnabled  bool   `json:"watermark_enabled"`
	PolicyEnabled     bool   `json:"policy_enabled"`
	HoneytokenEnabled bool   `json:"honeytoken_enabled"`
	ConsentExpired    bool   `json:"consent_expired"`
	OwnedFiles        int64  `json:"owned_files"`
	Alerts            int64  `json:"alerts"`
}

// RiskOverview: общая картина риска.
type RiskOverview struct {
	SystemRisk         float64 `json:"system_risk"`
	TotalAlerts        int64   `json:"total_alerts"`
	TrapHits           int     `json:"trap_hits"`
	Partners           int     `json:"partners"`
	HighRiskPartners   int     `json:"high_risk_partners"`
	RestrictedPartners int     `json:"restricted_partners"`
}

// DashboardService строит сводки только из сохранённых данных.
type DashboardService struct {
	st       *repo.Stores
	consents *ConsentService
	policy   *risk.Holder
}

func NewDashboardService(st *repo.Stores, consents *ConsentService, policy *risk.Holder) *DashboardService {
	return &DashboardService{st: st, consents: consents, policy: policy}
}

func (s *DashboardService) AdminTrapLogs(ctx context.Context, f repo.TrapFilter) ([]model.TrapLog, error) {
	return s.st.TrapLogs.List(ctx, f)
}

// FileAlerts: срабатывания ловушек, защищающих данные пользователя.
func (s *DashboardService) FileAlerts(ctx context.Context, userID string) ([]model.TrapLog, error) {
	return s.st.TrapLogs.List(ctx, repo.TrapFilter{UserID: userID})
}

func (s *DashboardService) PartnerActivitySummary(ctx context.Context) ([]PartnerActivity, error) {
	partners, err := s.st.Partners.List(ctx)
	if err != nil {
		return nil, err
	}
	since := timeNow().Add(-s.policy.Policy().VolumeWindow)
	list := make([]PartnerActivity, 0, len(partners))
	for i := range partners {
		p := &partners[i]
		volume, err := s.st.AccessLogs.CountActivity(ctx, p.ID, volumeActions, since)
		if err != nil {
			return nil, err
		}
		list = append(list, PartnerActivity{
			PartnerID:    p.ID,
			Name:         p.Name,
			RiskScore:    p.RiskScore,
			TrapHits:     p.TrapHits,
			Status:       p.Status,
			ManualBlock:  p.ManualBlock,
			Volume:       volume,
			BlockedUsers: p.BlockedUserIDs(),
		})
	}
	return list, nil
}

func (s *DashboardService) UserActivitySummary(ctx context.Context) ([]UserActivity, error) {
	users, err := s.st.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	now := timeNow()
	list := make([]UserActivity, 0, len(users))
	for _, u := range users {
		c, err := s.consents.load(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		owned, err := s.st.Files.CountOwned(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		alerts, err := s.st.TrapLogs.Count(ctx, repo.TrapFilter{UserID: u.ID})
		if err != nil {
			return nil, err
		}
		list = append(list, UserActivity{
			UserID:            u.ID,
			Login:             u.Login,
			Role:              u.Role,
			WatermarkEnabled:  c.Allows(model.ProtectionWatermark, now),
			PolicyEnabled:     c.Allows(model.ProtectionPolicy, now),
			HoneytokenEnabled: c.Allows(model.ProtectionHoneytoken, now),
			ConsentExpired:    c.Expired(now),
			OwnedFiles:        owned,
			Alerts:            alerts,
		})
	}
	return list, nil
}

// RiskOverview: системный риск равен максимальному баллу среди партнёров.
func (s *DashboardService) RiskOverview(ctx context.Context) (*RiskOverview, error) {
	partners, err := s.st.Partners.List(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.st.TrapLogs.Count(ctx, repo.TrapFilter{})
	if err != nil {
		return nil, err
	}
	pol := s.policy.Policy()
	o := &RiskOverview{TotalAlerts: total, Partners: len(partners)}
	for _, p := range partners {
		if p.RiskScore > o.SystemRisk {
			o.SystemRisk = p.RiskScore
		}
		o.TrapHits += p.TrapHits
		if p.RiskScore >= pol.MonitorScore {
			o.HighRiskPartners++
		}
		if p.Status == model.PartnerRestricted {
			o.RestrictedPartners++
		}
	}
	return o, nil
}
