package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"vaultctl/audit"
	"vaultctl/users"
)

func (a *app) cmdAdmin(ctx context.Context, args []string) error {
	if err := a.requireRole(users.RoleAdmin); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: vaultctl admin users|data <subcommand>")
	}

	switch args[0] {
	case "users":
		return a.cmdAdminUsers(ctx, args[1:])
	case "data":
		return a.cmdAdminData(ctx, args[1:])
	default:
		return errors.Errorf("unknown admin subcommand %q", args[0])
	}
}

func (a *app) cmdAdminUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: vaultctl admin users list|get|set-role|delete")
	}

	switch args[0] {
	case "list":
		accounts, err := a.admin.ListUsers(ctx)
		if err != nil {
			return err
		}
		return printJSON(accounts)

	case "get":
		if len(args) < 2 {
			return errors.New("usage: vaultctl admin users get <user-id>")
		}
		userID, err := parseUserID(args[1])
		if err != nil {
			return err
		}
		account, err := a.admin.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		return printJSON(account)

	case "set-role":
		if len(args) < 3 {
			return errors.New("usage: vaultctl admin users set-role <user-id> user|admin")
		}
		userID, err := parseUserID(args[1])
		if err != nil {
			return err
		}
		account, err := a.admin.UpdateUserRole(ctx, userID, users.Role(args[2]))
		if err != nil {
			return err
		}
		return printJSON(account)

	case "delete":
		if len(args) < 2 {
			return errors.New("usage: vaultctl admin users delete <user-id>")
		}
		userID, err := parseUserID(args[1])
		if err != nil {
			return err
		}
		if err := a.admin.DeleteUser(ctx, userID); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil

	default:
		return errors.Errorf("unknown admin users subcommand %q", args[0])
	}
}

func (a *app) cmdAdminData(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: vaultctl admin data list|list-user|delete")
	}

	switch args[0] {
	case "list":
		items, err := a.admin.ListAllData(ctx)
		if err != nil {
			return err
		}
		return printJSON(items)

	case "list-user":
		if len(args) < 2 {
			return errors.New("usage: vaultctl admin data list-user <user-id>")
		}
		userID, err := parseUserID(args[1])
		if err != nil {
			return err
		}
		items, err := a.admin.ListUserData(ctx, userID)
		if err != nil {
			return err
		}
		return printJSON(items)

	case "delete":
		if len(args) < 2 {
			return errors.New("usage: vaultctl admin data delete <data-id>")
		}
		if err := a.admin.DeleteAnyData(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil

	default:
		return errors.Errorf("unknown admin data subcommand %q", args[0])
	}
}

func (a *app) cmdAudit(ctx context.Context, args []string) error {
	if err := a.requireRole(users.RoleAdmin); err != nil {
		return err
	}

	flags := flag.NewFlagSet("audit", flag.ContinueOnError)
	userID := flags.String("user", "", "filter by user id")
	action := flags.String("action", "", "filter by action")
	resourceType := flags.String("resource-type", "", "filter by resource type")
	limit := flags.Int("limit", 50, "page size")
	offset := flags.Int("offset", 0, "page offset")
	if err := flags.Parse(args); err != nil {
		return err
	}

	filters := &audit.Filters{Limit: limit, Offset: offset}
	if *userID != "" {
		filters.UserID = userID
	}
	if *action != "" {
		filters.Action = action
	}
	if *resourceType != "" {
		filters.ResourceType = resourceType
	}

	page, err := a.audit.Logs(ctx, filters)
	if err != nil {
		return err
	}
	return printJSON(page)
}

func parseUserID(raw string) (int64, error) {
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parsing user id")
	}
	return userID, nil
}
