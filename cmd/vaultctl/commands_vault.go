package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"vaultctl/users"
	"vaultctl/vault"
)

func (a *app) cmdVault(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: vaultctl vault status|init|unseal|seal")
	}

	switch args[0] {
	case "status":
		if err := a.requireRole(""); err != nil {
			return err
		}
		resp, err := a.vault.GetStatus(ctx)
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "init":
		if err := a.requireRole(users.RoleAdmin); err != nil {
			return err
		}
		flags := flag.NewFlagSet("vault init", flag.ContinueOnError)
		keyName := flags.String("key-name", "", "root key name")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		token, err := promptPassword("External token")
		if err != nil {
			return err
		}
		resp, err := a.vault.Init(ctx, vault.InitRequest{ExternalToken: token, RootKeyName: *keyName})
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "unseal":
		if err := a.requireRole(users.RoleAdmin); err != nil {
			return err
		}
		token, err := promptPassword("External token")
		if err != nil {
			return err
		}
		resp, err := a.vault.Unseal(ctx, vault.UnsealRequest{ExternalToken: token})
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "seal":
		if err := a.requireRole(users.RoleAdmin); err != nil {
			return err
		}
		resp, err := a.vault.Seal(ctx)
		if err != nil {
			return err
		}
		return printJSON(resp)

	default:
		return errors.Errorf("unknown vault subcommand %q", args[0])
	}
}

func (a *app) cmdEncrypt(ctx context.Context, args []string) error {
	if err := a.requireRole(""); err != nil {
		return err
	}
	flags := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	data := flags.String("data", "", "plaintext to encrypt")
	keyPhrase := flags.String("key-phrase", "", "optional key phrase")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *data == "" {
		return errors.New("usage: vaultctl encrypt -data <plaintext> [-key-phrase <phrase>]")
	}

	resp, err := a.vault.Encrypt(ctx, vault.EncryptRequest{Data: *data, KeyPhrase: *keyPhrase})
	if err != nil {
		return err
	}
	fmt.Println(resp.Data)
	return nil
}

func (a *app) cmdDecrypt(ctx context.Context, args []string) error {
	if err := a.requireRole(""); err != nil {
		return err
	}
	flags := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	data := flags.String("data", "", "ciphertext to decrypt")
	keyPhrase := flags.String("key-phrase", "", "optional key phrase")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *data == "" {
		return errors.New("usage: vaultctl decrypt -data <ciphertext> [-key-phrase <phrase>]")
	}

	resp, err := a.vault.Decrypt(ctx, vault.DecryptRequest{Data: *data, KeyPhrase: *keyPhrase})
	if err != nil {
		return err
	}
	fmt.Println(resp.Data)
	return nil
}
