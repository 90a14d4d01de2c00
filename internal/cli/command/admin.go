package command

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fxgallery/internal/cli/connection"
	"github.com/yndnr/fxgallery/internal/core/service"
)

// AdminCommand returns the admin subcommand group.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Server administration helpers",
		Subcommands: []*cli.Command{
			{
				Name:      "hash-key",
				Usage:     "Hash an admin key for the admin.api_key server setting",
				ArgsUsage: "[SECRET|-]",
				Action:    adminHashKey,
			},
			{
				Name:   "health",
				Usage:  "Check server readiness",
				Action: adminHealth,
			},
		},
	}
}

func adminHashKey(c *cli.Context) error {
	secret, err := readInput(c, "", c.Args().First())
	if err != nil {
		return err
	}
	hash, err := service.HashAdminKey(secret)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, hash)
	return err
}

func adminHealth(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/ready")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	status := resp.StatusCode

	var health struct {
		Status string `json:"status"`
		Time   string `json:"time"`
		Error  string `json:"error,omitempty"`
	}
	if err := connection.ReadEnvelope(resp, &health); err != nil {
		return err
	}
	if err := render(c, &health); err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server not ready: %s", health.Error)
	}
	return nil
}
