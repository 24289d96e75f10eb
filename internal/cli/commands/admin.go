package commands

import (
	"DataSentinel/internal/config"
	"DataSentinel/internal/model"
	"DataSentinel/internal/service"
	"context"
	"fmt"
	"net/url"
	"text/tabwriter"
)

type partnersCmd struct{}

func (partnersCmd) Name() string        { return "partners" }
func (partnersCmd) Description() string { return "List partners with risk score and status (admin)" }
func (partnersCmd) Usage() string       { return "partners" }

func (partnersCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var partners []model.Partner
	if err := c.GetJSON(ctx, "/api/admin/partners", nil, &partners); err != nil {
		return explain(err)
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRISK\tTRAP HITS\tSTATUS\tMANUAL")
	for _, p := range partners {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%s\t%t\n", p.ID, p.RiskScore, p.TrapHits, p.Status, p.ManualBlock)
	}
	return tw.Flush()
}

// blockCmd: ручная блокировка или снятие блокировки партнёра.
type blockCmd struct {
	name string
}

func (b blockCmd) Name() string        { return b.name }
func (b blockCmd) Description() string { return "Manual partner " + b.name + " (admin)" }
func (b blockCmd) Usage() string       { return b.name + " <partner-id>" }

func (b blockCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var p model.Partner
	path := "/api/admin/partners/" + url.PathEscape(args[0]) + "/" + b.name
	if err := c.PostJSON(ctx, path, nil, &p); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "Partner %s: %s (risk %.2f)\n", p.ID, p.Status, p.RiskScore)
	return nil
}

type riskOverviewCmd struct{}

func (riskOverviewCmd) Name() string        { return "risk-overview" }
func (riskOverviewCmd) Description() string { return "Show system risk summary (admin)" }
func (riskOverviewCmd) Usage() string       { return "risk-overview" }

func (riskOverviewCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var o service.RiskOverview
	if err := c.GetJSON(ctx, "/api/admin/risk-overview", nil, &o); err != nil {
		return explain(err)
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "System risk:\t%.2f\n", o.SystemRisk)
	fmt.Fprintf(tw, "Total alerts:\t%d\n", o.TotalAlerts)
	fmt.Fprintf(tw, "Trap hits:\t%d\n", o.TrapHits)
	fmt.Fprintf(tw, "Partners:\t%d\n", o.Partners)
	fmt.Fprintf(tw, "High risk:\t%d\n", o.HighRiskPartners)
	fmt.Fprintf(tw, "Restricted:\t%d\n", o.RestrictedPartners)
	return tw.Flush()
}

func init() {
	RegisterCmd(partnersCmd{})
	RegisterCmd(blockCmd{name: "block"})
	RegisterCmd(blockCmd{name: "unblock"})
	RegisterCmd(riskOverviewCmd{})
}
