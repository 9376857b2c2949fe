package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"vaultctl/projects"
	"vaultctl/records"
	"vaultctl/secrets"
)

func (a *app) cmdSecrets(ctx context.Context, args []string) error {
	if err := a.requireRole(""); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: vaultctl secrets list|get|create|update|delete")
	}

	switch args[0] {
	case "list":
		items, err := a.secrets.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(items)

	case "get":
		if len(args) < 2 {
			return errors.New("usage: vaultctl secrets get <id>")
		}
		secret, err := a.secrets.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(secret)

	case "create":
		flags := flag.NewFlagSet("secrets create", flag.ContinueOnError)
		name := flags.String("name", "", "secret name")
		description := flags.String("description", "", "description")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" {
			return errors.New("usage: vaultctl secrets create -name <name> [-description <text>]")
		}
		value, err := promptPassword("Secret value")
		if err != nil {
			return err
		}
		secret, err := a.secrets.Create(ctx, secrets.CreateRequest{Name: *name, Value: value, Description: *description})
		if err != nil {
			return err
		}
		return printJSON(secret)

	case "update":
		flags := flag.NewFlagSet("secrets update", flag.ContinueOnError)
		name := flags.String("name", "", "new name")
		description := flags.String("description", "", "new description")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		rest := flags.Args()
		if len(rest) < 1 {
			return errors.New("usage: vaultctl secrets update [-name ...] [-description ...] <id>")
		}
		req := secrets.UpdateRequest{}
		if *name != "" {
			req.Name = name
		}
		if *description != "" {
			req.Description = description
		}
		secret, err := a.secrets.Update(ctx, rest[0], req)
		if err != nil {
			return err
		}
		return printJSON(secret)

	case "delete":
		if len(args) < 2 {
			return errors.New("usage: vaultctl secrets delete <id>")
		}
		if err := a.secrets.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil

	default:
		return errors.Errorf("unknown secrets subcommand %q", args[0])
	}
}

func (a *app) cmdRecords(ctx context.Context, args []string) error {
	if err := a.requireRole(""); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: vaultctl records list|get|create|update|delete|rotate")
	}

	switch args[0] {
	case "list":
		flags := flag.NewFlagSet("records list", flag.ContinueOnError)
		dataType := flags.String("type", "", "filter by data type")
		projectID := flags.String("project", "", "list within a project")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		var items []records.ListItem
		var err error
		if *projectID != "" {
			items, err = a.records.ListProject(ctx, *projectID, records.Type(*dataType))
		} else {
			items, err = a.records.List(ctx, records.Type(*dataType))
		}
		if err != nil {
			return err
		}
		return printJSON(items)

	case "get":
		if len(args) < 2 {
			return errors.New("usage: vaultctl records get <id>")
		}
		record, err := a.records.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(record)

	case "create":
		flags := flag.NewFlagSet("records create", flag.ContinueOnError)
		name := flags.String("name", "", "record name")
		description := flags.String("description", "", "description")
		dataType := flags.String("type", string(records.TypeText), "data type")
		projectID := flags.String("project", "", "owning project")
		rotationDays := flags.Int("rotation-days", 0, "rotation interval in days")
		payloadJSON := flags.String("data", "{}", "type-specific payload as a JSON object")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" {
			return errors.New("usage: vaultctl records create -name <name> -type <type> -data <json>")
		}
		payload, err := parsePayload(*payloadJSON)
		if err != nil {
			return err
		}
		record, err := a.records.Create(ctx, records.CreateRequest{
			Name:                 *name,
			Description:          *description,
			DataType:             records.Type(*dataType),
			RotationIntervalDays: *rotationDays,
			Payload:              payload,
		}, *projectID)
		if err != nil {
			return err
		}
		return printJSON(record)

	case "update":
		flags := flag.NewFlagSet("records update", flag.ContinueOnError)
		name := flags.String("name", "", "new name")
		description := flags.String("description", "", "new description")
		projectID := flags.String("project", "", "move to project")
		rotationDays := flags.Int("rotation-days", 0, "rotation interval in days")
		payloadJSON := flags.String("data", "", "replacement payload as a JSON object")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		rest := flags.Args()
		if len(rest) < 1 {
			return errors.New("usage: vaultctl records update [flags] <id>")
		}
		req := records.UpdateRequest{
			Name:                 *name,
			Description:          *description,
			ProjectID:            *projectID,
			RotationIntervalDays: *rotationDays,
		}
		if *payloadJSON != "" {
			payload, err := parsePayload(*payloadJSON)
			if err != nil {
				return err
			}
			req.Payload = payload
		}
		record, err := a.records.Update(ctx, rest[0], req)
		if err != nil {
			return err
		}
		return printJSON(record)

	case "delete":
		if len(args) < 2 {
			return errors.New("usage: vaultctl records delete <id>")
		}
		if err := a.records.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil

	case "rotate":
		if len(args) < 2 {
			return errors.New("usage: vaultctl records rotate <id>")
		}
		resp, err := a.records.Rotate(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Println(resp.Message)
		return nil

	default:
		return errors.Errorf("unknown records subcommand %q", args[0])
	}
}

func (a *app) cmdProjects(ctx context.Context, args []string) error {
	if err := a.requireRole(""); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: vaultctl projects list|get|create|rename|delete|members|add-member|remove-member")
	}

	switch args[0] {
	case "list":
		items, err := a.projects.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(items)

	case "get":
		if len(args) < 2 {
			return errors.New("usage: vaultctl projects get <id>")
		}
		project, err := a.projects.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(project)

	case "create":
		if len(args) < 2 {
			return errors.New("usage: vaultctl projects create <name>")
		}
		project, err := a.projects.Create(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(project)

	case "rename":
		if len(args) < 3 {
			return errors.New("usage: vaultctl projects rename <id> <name>")
		}
		project, err := a.projects.Update(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		return printJSON(project)

	case "delete":
		if len(args) < 2 {
			return errors.New("usage: vaultctl projects delete <id>")
		}
		if err := a.projects.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil

	case "members":
		if len(args) < 2 {
			return errors.New("usage: vaultctl projects members <id>")
		}
		members, err := a.projects.Members(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(members)

	case "add-member":
		flags := flag.NewFlagSet("projects add-member", flag.ContinueOnError)
		role := flags.String("role", string(projects.MemberRoleMember), "project role")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		rest := flags.Args()
		if len(rest) < 2 {
			return errors.New("usage: vaultctl projects add-member [-role owner|admin|member] <project-id> <user-id>")
		}
		userID, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return errors.Wrap(err, "parsing user id")
		}
		member, err := a.projects.AddMember(ctx, rest[0], projects.AddMemberRequest{
			UserID: userID,
			Role:   projects.MemberRole(*role),
		})
		if err != nil {
			return err
		}
		return printJSON(member)

	case "remove-member":
		if len(args) < 3 {
			return errors.New("usage: vaultctl projects remove-member <project-id> <user-id>")
		}
		userID, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return errors.Wrap(err, "parsing user id")
		}
		if err := a.projects.RemoveMember(ctx, args[1], userID); err != nil {
			return err
		}
		fmt.Println("Removed.")
		return nil

	default:
		return errors.Errorf("unknown projects subcommand %q", args[0])
	}
}

func parsePayload(raw string) (map[string]any, error) {
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, errors.Wrap(err, "-data must be a JSON object")
	}
	return payload, nil
}
