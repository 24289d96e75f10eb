package commands

import (
	"DataSentinel/internal/config"
	"DataSentinel/internal/model"
	"DataSentinel/internal/service"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"
)

type filesCmd struct{}

func (filesCmd) Name() string        { return "files" }
func (filesCmd) Description() string { return "List own and shared files" }
func (filesCmd) Usage() string       { return "files" }

func (filesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var files []service.FileView
	if err := c.GetJSON(ctx, "/api/files", nil, &files); err != nil {
		return explain(err)
	}
	if len(files) == 0 {
		fmt.Fprintln(Out, "No files")
		return nil
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tOWNED\tSHARED WITH")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n", f.ID, f.Name, f.Size, f.Owned, strings.Join(f.Shares, ","))
	}
	return tw.Flush()
}

type partnerFilesCmd struct{}

func (partnerFilesCmd) Name() string        { return "partner-files" }
func (partnerFilesCmd) Description() string { return "List other users' files available for request" }
func (partnerFilesCmd) Usage() string       { return "partner-files" }

func (partnerFilesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var files []service.PartnerFileView
	if err := c.GetJSON(ctx, "/api/files/partner", nil, &files); err != nil {
		return explain(err)
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tOWNER\tACCESS\tPENDING")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", f.ID, f.Name, f.OwnerID, f.HasAccess, f.PendingRequest)
	}
	return tw.Flush()
}

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload a file" }
func (uploadCmd) Usage() string       { return "upload <path> [description]" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var description string
	if len(args) == 2 {
		description = args[1]
	}
	var view service.FileView
	if err := c.Upload(ctx, "/api/files", filepath.Base(args[0]), f, description, &view); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "Uploaded %s, id %s\n", view.Name, view.ID)
	if view.HoneytokenID != "" {
		fmt.Fprintf(Out, "Honeytoken: %s\n", view.HoneytokenID)
	}
	return nil
}

type requestAccessCmd struct{}

func (requestAccessCmd) Name() string        { return "request-access" }
func (requestAccessCmd) Description() string { return "Request access to another user's file" }
func (requestAccessCmd) Usage() string {
	return "request-access <file-id> [message] [--honeytoken <id>]"
}

type accessRequestPayload struct {
	FileID     string `json:"fileId"`
	Message    string `json:"message,omitempty"`
	Honeytoken string `json:"honeytoken,omitempty"`
}

func (requestAccessCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var payload accessRequestPayload
	var rest []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--honeytoken" {
			if i+1 >= len(args) {
				return ErrUsage
			}
			payload.Honeytoken = args[i+1]
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	if len(rest) < 1 || len(rest) > 2 {
		return ErrUsage
	}
	payload.FileID = rest[0]
	if len(rest) == 2 {
		payload.Message = rest[1]
	}

	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var res service.AccessResult
	if err := c.PostJSON(ctx, "/api/access/request", payload, &res); err != nil {
		return explain(err)
	}
	if !res.Granted {
		return errors.New("access denied")
	}
	if res.RequestID != "" {
		fmt.Fprintf(Out, "Access request %s created\n", res.RequestID)
		return nil
	}
	fmt.Fprintln(Out, "Access granted")
	return nil
}

type requestsCmd struct{}

func (requestsCmd) Name() string        { return "requests" }
func (requestsCmd) Description() string { return "List access requests made by or addressed to you" }
func (requestsCmd) Usage() string       { return "requests [pending|approved|denied]" }

func (requestsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var items []model.AccessRequest
	if err := c.GetJSON(ctx, "/api/access/requests", nil, &items); err != nil {
		return explain(err)
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tOWNER\tREQUESTER\tSTATUS\tMESSAGE")
	for _, it := range items {
		if len(args) == 1 && it.Status != args[0] {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.FileName, it.OwnerID, it.RequesterID, it.Status, it.Message)
	}
	return tw.Flush()
}

type alertsCmd struct{}

func (alertsCmd) Name() string        { return "alerts" }
func (alertsCmd) Description() string { return "Show honeytoken alerts on own files" }
func (alertsCmd) Usage() string       { return "alerts" }

func (alertsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	var logs []model.TrapLog
	if err := c.GetJSON(ctx, "/api/alerts/files", nil, &logs); err != nil {
		return explain(err)
	}
	if len(logs) == 0 {
		fmt.Fprintln(Out, "No alerts")
		return nil
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPARTNER\tFILE\tSEVERITY")
	for _, l := range logs {
		file := "-"
		if l.FileID != nil {
			file = *l.FileID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Timestamp.Format(time.RFC3339), l.PartnerID, file, l.Severity)
	}
	return tw.Flush()
}

// decideCmd: approve и deny отличаются только действием.
type decideCmd struct {
	action string
}

func (d decideCmd) Name() string        { return d.action }
func (d decideCmd) Description() string { return "Decide on an access request: " + d.action }
func (d decideCmd) Usage() string       { return d.action + " <request-id>" }

func (d decideCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authClient(cfg)
	if err != nil {
		return err
	}
	payload := map[string]string{"requestId": args[0], "action": d.action}
	var res struct {
		Status string `json:"status"`
	}
	if err := c.PostJSON(ctx, "/api/access/approve", payload, &res); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "Request %s: %s\n", args[0], res.Status)
	return nil
}

func init() {
	RegisterCmd(filesCmd{})
	RegisterCmd(partnerFilesCmd{})
	RegisterCmd(uploadCmd{})
	RegisterCmd(requestAccessCmd{})
	RegisterCmd(requestsCmd{})
	RegisterCmd(alertsCmd{})
	RegisterCmd(decideCmd{action: service.ActionApprove})
	RegisterCmd(decideCmd{action: service.ActionDeny})
}
