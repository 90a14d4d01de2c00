package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fxgallery/internal/core/service"
	"github.com/yndnr/fxgallery/pkg/crypto/aead"
	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

func kindFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "kind",
		Aliases:  []string{"k"},
		Usage:    "Artwork kind: " + kindList(),
		Required: true,
	}
}

func paramsFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Read the parameter object from a JSON file",
	}
}

func quietFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "Print only the token",
	}
}

func passphraseFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "passphrase",
		Aliases:  []string{"p"},
		Usage:    "Export passphrase for sealed tokens",
		EnvVars:  []string{"FXTOKEN_PASSPHRASE"},
		Required: required,
	}
}

func cipherFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "cipher",
		Usage: "Sealing cipher: aes-gcm, chacha20-poly1305 (default from config)",
	}
}

// EncodeCommand returns the encode command.
func EncodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Aliases:   []string{"enc"},
		Usage:     "Encode a parameter object into a share token",
		ArgsUsage: "[PARAMS_JSON|-]",
		Flags: []cli.Flag{
			kindFlag(),
			paramsFileFlag(),
			quietFlag(),
			&cli.BoolFlag{
				Name:  "remote",
				Usage: "Encode on the server instead of locally",
			},
		},
		Action: tokenEncode,
	}
}

// SealCommand returns the seal command.
func SealCommand() *cli.Command {
	return &cli.Command{
		Name:      "seal",
		Usage:     "Encode a parameter object into a sealed export token",
		ArgsUsage: "[PARAMS_JSON|-]",
		Flags: []cli.Flag{
			kindFlag(),
			paramsFileFlag(),
			passphraseFlag(true),
			cipherFlag(),
			quietFlag(),
		},
		Action: tokenSeal,
	}
}

// DecodeCommand returns the decode command.
func DecodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Aliases:   []string{"dec"},
		Usage:     "Decode a plain or sealed token",
		ArgsUsage: "[TOKEN|-]",
		Flags: []cli.Flag{
			passphraseFlag(false),
			cipherFlag(),
			&cli.BoolFlag{
				Name:  "params-only",
				Usage: "Print only the parameter object",
			},
			&cli.BoolFlag{
				Name:  "remote",
				Usage: "Decode on the server instead of locally",
			},
		},
		Action: tokenDecode,
	}
}

// SeedCommand returns the seed command.
func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Derive the renderer seed of one or more tokens",
		ArgsUsage: "TOKEN...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Print only the seeds",
			},
		},
		Action: tokenSeed,
	}
}

// FingerprintCommand returns the fingerprint command.
func FingerprintCommand() *cli.Command {
	return &cli.Command{
		Name:      "fingerprint",
		Aliases:   []string{"fp"},
		Usage:     "Compute the integrity fingerprint of a text",
		ArgsUsage: "[TEXT|-]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "canonical",
				Usage: "Treat the input as a parameter object and fingerprint its canonical form",
			},
		},
		Action: tokenFingerprint,
	}
}

// KindsCommand returns the kinds command.
func KindsCommand() *cli.Command {
	return &cli.Command{
		Name:   "kinds",
		Usage:  "List the supported artwork kinds",
		Action: listKinds,
	}
}

func kindList() string {
	names := make([]string, len(fxtoken.Kinds))
	for i, k := range fxtoken.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func readParams(c *cli.Context) (*fxtoken.Params, error) {
	text, err := readInput(c, c.String("file"), c.Args().First())
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("no parameter object given")
	}
	params, err := fxtoken.ParseParams(text)
	if err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}
	return params, nil
}

// newCodec builds a codec with a cipher when a passphrase is given.
func newCodec(c *cli.Context) (*fxtoken.Codec, error) {
	passphrase := c.String("passphrase")
	if passphrase == "" {
		return fxtoken.NewCodec(), nil
	}

	name := c.String("cipher")
	if name == "" {
		name = GetConfig(c).Cipher
	}
	cipherType, err := aead.ParseCipherType(name)
	if err != nil {
		return nil, err
	}
	cipher, err := aead.NewFromPassphrase(passphrase, cipherType)
	if err != nil {
		return nil, err
	}
	return fxtoken.NewCodec(fxtoken.WithCipher(cipher)), nil
}

func tokenEncode(c *cli.Context) error {
	kind, err := fxtoken.ParseKind(c.String("kind"))
	if err != nil {
		return fmt.Errorf("%w (want one of %s)", err, kindList())
	}
	params, err := readParams(c)
	if err != nil {
		return err
	}

	var result service.EncodeResponse
	if c.Bool("remote") {
		client, err := EnsureConnected(c)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		req := service.EncodeRequest{Kind: string(kind), Params: params}
		if err := client.PostJSON(ctx, "/v1/tokens", req, &result); err != nil {
			return err
		}
	} else {
		token, err := fxtoken.Encode(kind, params)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		parts, err := fxtoken.Parse(token)
		if err != nil {
			return err
		}
		result = service.EncodeResponse{
			Token:       token,
			Kind:        string(kind),
			Seed:        fxtoken.Seed(token),
			Fingerprint: parts.Hash,
		}
	}

	if c.Bool("quiet") {
		_, err := fmt.Fprintln(c.App.Writer, result.Token)
		return err
	}
	return render(c, &result)
}

func tokenSeal(c *cli.Context) error {
	kind, err := fxtoken.ParseKind(c.String("kind"))
	if err != nil {
		return fmt.Errorf("%w (want one of %s)", err, kindList())
	}
	params, err := readParams(c)
	if err != nil {
		return err
	}
	codec, err := newCodec(c)
	if err != nil {
		return err
	}

	token, err := codec.Seal(kind, params)
	if err != nil {
		return fmt.Errorf("seal: %w", err)
	}

	if c.Bool("quiet") {
		_, err := fmt.Fprintln(c.App.Writer, token)
		return err
	}
	return render(c, &service.ExportResponse{
		Token: token,
		Kind:  string(kind),
		Seed:  fxtoken.Seed(token),
	})
}

func tokenDecode(c *cli.Context) error {
	token, err := readInput(c, "", c.Args().First())
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("no token given")
	}

	var result service.DecodeResponse
	if c.Bool("remote") {
		client, err := EnsureConnected(c)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := client.PostJSON(ctx, "/v1/tokens/decode", service.DecodeRequest{Token: token}, &result); err != nil {
			return err
		}
	} else {
		codec, err := newCodec(c)
		if err != nil {
			return err
		}
		decoded, err := codec.Decode(token)
		if err != nil {
			if errors.Is(err, fxtoken.ErrNoCipher) {
				return fmt.Errorf("decode: %w (sealed tokens need --passphrase)", err)
			}
			return fmt.Errorf("decode: %w", err)
		}
		result = service.DecodeResponse{
			Kind:   string(decoded.Kind),
			Sealed: decoded.Sealed,
			Params: decoded.Params,
			Seed:   decoded.Seed,
		}
	}

	if c.Bool("params-only") {
		return render(c, result.Params)
	}
	return render(c, &result)
}

type seedRow struct {
	Token string `json:"token"`
	Seed  uint32 `json:"seed"`
}

func tokenSeed(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one token is required")
	}

	rows := make([]seedRow, 0, c.NArg())
	for _, token := range c.Args().Slice() {
		rows = append(rows, seedRow{Token: token, Seed: fxtoken.Seed(token)})
	}

	if c.Bool("quiet") {
		for _, row := range rows {
			if _, err := fmt.Fprintln(c.App.Writer, row.Seed); err != nil {
				return err
			}
		}
		return nil
	}
	return render(c, rows)
}

func tokenFingerprint(c *cli.Context) error {
	text, err := readInput(c, "", c.Args().First())
	if err != nil {
		return err
	}

	if c.Bool("canonical") {
		params, err := fxtoken.ParseParams(text)
		if err != nil {
			return fmt.Errorf("parse parameters: %w", err)
		}
		if text, err = params.Canonical(); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(c.App.Writer, fxtoken.Fingerprint(text))
	return err
}

type kindRow struct {
	Kind string `json:"kind"`
}

func listKinds(c *cli.Context) error {
	rows := make([]kindRow, len(fxtoken.Kinds))
	for i, k := range fxtoken.Kinds {
		rows[i] = kindRow{Kind: string(k)}
	}
	return render(c, rows)
}
