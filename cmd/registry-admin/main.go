package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"

	jwttoken "assetledger/internal/jwt_token"
	"assetledger/pkg/domain"
)

var flagSigningKey = &cli.StringFlag{
	Name:    "signing-key",
	EnvVars: []string{"JWT_SIGNING_KEY"},
	Usage:   "HMAC key shared with the registry server",
}
var flagIssuer = &cli.StringFlag{
	Name:    "issuer",
	EnvVars: []string{"JWT_ISSUER"},
	Value:   "asset-registry",
}
var flagAudience = &cli.StringFlag{
	Name:    "audience",
	EnvVars: []string{"JWT_AUDIENCE"},
	Value:   "asset-registry-api",
}
var flagAddress = &cli.StringFlag{
	Name:     "address",
	Usage:    "Caller address the token authenticates",
	Required: true,
}
var flagTTL = &cli.DurationFlag{
	Name:  "ttl",
	Value: time.Hour,
	Usage: "Token lifetime",
}
var flagServer = &cli.StringFlag{
	Name:  "server",
	Value: "http://127.0.0.1:8080",
	Usage: "Registry server base URL",
}

func main() {
	app := &cli.App{
		Name:  "registry-admin",
		Usage: "operator tooling for the asset registry",
		Commands: []*cli.Command{
			{
				Name:  "issue-token",
				Usage: "sign a caller token for an address",
				Flags: []cli.Flag{flagSigningKey, flagIssuer, flagAudience, flagAddress, flagTTL},
				Action: func(cCtx *cli.Context) error {
					key := cCtx.String(flagSigningKey.Name)
					if key == "" {
						return cli.Exit("a signing key is required (--signing-key or JWT_SIGNING_KEY)", 2)
					}
					caller, err := domain.ParseIdentity(cCtx.String(flagAddress.Name))
					if err != nil {
						return cli.Exit(err.Error(), 2)
					}
					tokens := jwttoken.NewJWTService(key, cCtx.String(flagIssuer.Name), cCtx.String(flagAudience.Name))
					token, err := tokens.GenerateCallerToken(caller, cCtx.Duration(flagTTL.Name))
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				},
			},
			{
				Name:  "new-identity",
				Usage: "generate a secp256k1 key pair and print its address",
				Action: func(cCtx *cli.Context) error {
					key, err := crypto.GenerateKey()
					if err != nil {
						return fmt.Errorf("generate key: %w", err)
					}
					identity := domain.Identity(crypto.PubkeyToAddress(key.PublicKey))
					out := map[string]string{
						"address":     identity.String(),
						"private_key": hex.EncodeToString(crypto.FromECDSA(key)),
					}
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(out)
				},
			},
			{
				Name:  "config",
				Usage: "print the registry configuration",
				Flags: []cli.Flag{flagServer},
				Action: func(cCtx *cli.Context) error {
					url := strings.TrimRight(cCtx.String(flagServer.Name), "/") + "/v1/config"
					client := &http.Client{Timeout: 10 * time.Second}
					resp, err := client.Get(url)
					if err != nil {
						return fmt.Errorf("request %s: %w", url, err)
					}
					defer resp.Body.Close()
					body, err := io.ReadAll(resp.Body)
					if err != nil {
						return err
					}
					if resp.StatusCode != http.StatusOK {
						return fmt.Errorf("registry returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
					}
					fmt.Println(strings.TrimSpace(string(body)))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
