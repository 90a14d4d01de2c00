package command

import (
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/core/service"
)

// AccessCommand returns the access subcommand group.
func AccessCommand() *cli.Command {
	return &cli.Command{
		Name:  "access",
		Usage: "Inspect and manage export access",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Show whether an e-mail address may export",
				ArgsUsage: "EMAIL",
				Action:    accessCheck,
			},
			{
				Name:      "grant",
				Usage:     "Grant export access (admin)",
				ArgsUsage: "EMAIL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "reference",
						Aliases: []string{"r"},
						Usage:   "Note recorded with the grant, such as an order number",
					},
				},
				Action: accessGrant,
			},
			{
				Name:   "list",
				Usage:  "List all grants (admin)",
				Action: accessList,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke export access (admin)",
				ArgsUsage: "EMAIL",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: accessRevoke,
			},
		},
	}
}

// grantRow is the table view of a grant.
type grantRow struct {
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	Reference string    `json:"reference"`
	GrantedAt time.Time `json:"granted_at"`
	ID        string    `json:"id" table:"wide"`
}

func newGrantRow(g *domain.Grant) grantRow {
	return grantRow{
		Email:     g.Email,
		Source:    string(g.Source),
		Reference: g.Reference,
		GrantedAt: g.GrantedAtTime().UTC(),
		ID:        g.ID,
	}
}

func emailArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("exactly one EMAIL argument is required")
	}
	return c.Args().First(), nil
}

func accessCheck(c *cli.Context) error {
	email, err := emailArg(c)
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var status service.AccessStatus
	if err := client.GetJSON(ctx, "/v1/access?email="+url.QueryEscape(email), &status); err != nil {
		return err
	}
	if status.GrantedAt != nil {
		at := status.GrantedAt.UTC()
		status.GrantedAt = &at
	}
	return render(c, &status)
}

func accessGrant(c *cli.Context) error {
	email, err := emailArg(c)
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	req := service.GrantRequest{Email: email, Reference: c.String("reference")}
	var resp service.GrantResponse
	if err := client.PostJSON(ctx, "/v1/admin/access", req, &resp); err != nil {
		return err
	}
	if resp.Grant == nil {
		return fmt.Errorf("server returned no grant")
	}

	if !tableOutput(c) {
		return render(c, &resp)
	}
	if err := render(c, []grantRow{newGrantRow(resp.Grant)}); err != nil {
		return err
	}
	if !resp.Created {
		fmt.Fprintf(c.App.Writer, "\n%s already had access\n", resp.Grant.Email)
	}
	return nil
}

type grantList struct {
	Items []*domain.Grant `json:"items"`
	Total int             `json:"total"`
}

func accessList(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var list grantList
	if err := client.GetJSON(ctx, "/v1/admin/access", &list); err != nil {
		return err
	}

	if !tableOutput(c) {
		return render(c, &list)
	}
	rows := make([]grantRow, 0, len(list.Items))
	for _, g := range list.Items {
		rows = append(rows, newGrantRow(g))
	}
	if err := render(c, rows); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "\nTotal: %d grants\n", list.Total)
	return err
}

func accessRevoke(c *cli.Context) error {
	email, err := emailArg(c)
	if err != nil {
		return err
	}
	if !c.Bool("force") && !confirm(c, fmt.Sprintf("Revoke export access for %s?", email)) {
		fmt.Fprintln(c.App.Writer, "Aborted.")
		return nil
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var resp struct {
		Email   string `json:"email"`
		Revoked bool   `json:"revoked"`
	}
	if err := client.PostJSON(ctx, "/v1/admin/access/revoke", map[string]string{"email": email}, &resp); err != nil {
		return err
	}
	return render(c, &resp)
}
