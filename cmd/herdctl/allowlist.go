package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/auth"
)

// allowlistFile is the YAML document read by "allowlist import".
type allowlistFile struct {
	Emails []string `yaml:"emails"`
}

func newAllowlistCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowlist",
		Short: "Manage the emails allowed to sign up",
	}

	cmd.AddCommand(newAllowlistAddCmd(envFile))
	cmd.AddCommand(newAllowlistRemoveCmd(envFile))
	cmd.AddCommand(newAllowlistListCmd(envFile))
	cmd.AddCommand(newAllowlistImportCmd(envFile))
	return cmd
}

func newAllowlistAddCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <email>...",
		Short: "Allow one or more emails to sign up",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			emails, err := cleanEmails(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, _, err := openStore(ctx, *envFile)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			for _, email := range emails {
				if err := store.AddAllowedEmail(ctx, email); err != nil {
					return fmt.Errorf("add %s: %w", email, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "allowed %s\n", email)
			}
			return nil
		},
	}
}

func newAllowlistRemoveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <email>",
		Short: "Stop allowing an email to sign up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := auth.NormalizeEmail(args[0])
			ctx := cmd.Context()
			store, _, err := openStore(ctx, *envFile)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			if err := store.RemoveAllowedEmail(ctx, email); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return fmt.Errorf("%s is not on the allow-list", email)
				}
				return fmt.Errorf("remove %s: %w", email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", email)
			return nil
		},
	}
}

func newAllowlistListCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the allow-list",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := openStore(ctx, *envFile)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			entries, err := store.ListAllowedEmails(ctx)
			if err != nil {
				return fmt.Errorf("list allow-list: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "allow-list is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%s\n", e.Email, e.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func newAllowlistImportCmd(envFile *string) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load allowed emails from a YAML file",
		Long:  "Reads a YAML document with an \"emails\" list. With --replace, entries missing from the file are removed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			emails, err := readAllowlistFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, _, err := openStore(ctx, *envFile)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			for _, email := range emails {
				if err := store.AddAllowedEmail(ctx, email); err != nil {
					return fmt.Errorf("add %s: %w", email, err)
				}
			}
			removed := 0
			if replace {
				keep := make(map[string]bool, len(emails))
				for _, e := range emails {
					keep[e] = true
				}
				existing, err := store.ListAllowedEmails(ctx)
				if err != nil {
					return fmt.Errorf("list allow-list: %w", err)
				}
				for _, e := range existing {
					if keep[e.Email] {
						continue
					}
					if err := store.RemoveAllowedEmail(ctx, e.Email); err != nil && !errors.Is(err, models.ErrNotFound) {
						return fmt.Errorf("remove %s: %w", e.Email, err)
					}
					removed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d emails, removed %d\n", len(emails), removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "remove entries not present in the file")
	return cmd
}

func readAllowlistFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc allowlistFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Emails) == 0 {
		return nil, fmt.Errorf("%s: no emails listed", path)
	}
	return cleanEmails(doc.Emails)
}

// cleanEmails normalizes, de-duplicates and sorts the input.
func cleanEmails(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		email := auth.NormalizeEmail(r)
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%q is not an email address", r)
		}
		if seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, email)
	}
	sort.Strings(out)
	return out, nil
}
