package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fxgallery/internal/core/service"
	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

// ExportCommand returns the export command.
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Request a sealed export token from the server",
		ArgsUsage: "[PARAMS_JSON|-]",
		Flags: []cli.Flag{
			kindFlag(),
			paramsFileFlag(),
			quietFlag(),
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "E-mail address that purchased access",
				EnvVars:  []string{"FXTOKEN_EMAIL"},
				Required: true,
			},
		},
		Action: exportToken,
	}
}

func exportToken(c *cli.Context) error {
	kind, err := fxtoken.ParseKind(c.String("kind"))
	if err != nil {
		return fmt.Errorf("%w (want one of %s)", err, kindList())
	}
	params, err := readParams(c)
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	req := service.ExportRequest{Kind: string(kind), Params: params, Email: c.String("email")}
	var resp service.ExportResponse
	if err := client.PostJSON(ctx, "/v1/exports", req, &resp); err != nil {
		return err
	}

	if c.Bool("quiet") {
		_, err := fmt.Fprintln(c.App.Writer, resp.Token)
		return err
	}
	return render(c, &resp)
}
