package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/scrapsync/internal/models"
)

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return strings.Repeat("*", 8)
}

func (a *App) newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Show or configure the sync remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			a.printRemote(s)
			return nil
		},
	}
	cmd.AddCommand(a.newRemoteWebDAVCmd(), a.newRemoteS3Cmd(), a.newRemoteTestCmd())
	return cmd
}

func (a *App) printRemote(s models.Settings) {
	a.printf("Provider:    %s\n", s.Provider())
	switch s.Provider() {
	case models.ProviderS3:
		a.printf("Endpoint:    %s\n", s.Endpoint)
		a.printf("Region:      %s\n", s.Region)
		a.printf("Bucket:      %s\n", s.Bucket)
		a.printf("Access key:  %s\n", s.AccessKey)
		a.printf("Secret key:  %s\n", mask(s.SecretKey))
	default:
		a.printf("URL:         %s\n", s.URL)
		a.printf("User:        %s\n", s.User)
		a.printf("Password:    %s\n", mask(s.Password))
	}
}

// saveRemote stores s, after a connection test when test is set. A failed
// test leaves the stored settings unchanged.
func (a *App) saveRemote(ctx context.Context, s models.Settings, test bool) error {
	if test {
		if err := a.engine.TestSettings(ctx, s); err != nil {
			return fmt.Errorf("connection test failed, settings not saved: %w", err)
		}
		a.println("Connection OK")
	}
	if err := a.settings.Save(ctx, s); err != nil {
		return err
	}
	a.printf("Remote set to %s\n", s.Provider())
	return nil
}

func (a *App) newRemoteWebDAVCmd() *cobra.Command {
	var (
		dav  models.WebDAVSettings
		test bool
	)
	cmd := &cobra.Command{
		Use:   "webdav",
		Short: "Sync through a WebDAV folder; the password is prompted when not given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("password") && dav.User != "" {
				pw, err := readSecret(a.out, "WebDAV password")
				if err != nil {
					return err
				}
				dav.Password = pw
			}

			s, err := a.settings.Get(ctx)
			if err != nil {
				return err
			}
			s.SyncProvider = models.ProviderWebDAV
			s.WebDAVSettings = dav
			return a.saveRemote(ctx, s, test)
		},
	}
	f := cmd.Flags()
	f.StringVar(&dav.URL, "url", "", "folder URL, e.g. https://dav.example.com/scraps")
	f.StringVar(&dav.User, "user", "", "user name")
	f.StringVar(&dav.Password, "password", "", "password")
	f.BoolVar(&test, "test", false, "test the connection before saving")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func (a *App) newRemoteS3Cmd() *cobra.Command {
	var (
		s3   models.S3Settings
		test bool
	)
	cmd := &cobra.Command{
		Use:   "s3",
		Short: "Sync through an S3-compatible bucket; the secret key is prompted when not given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("secret-key") {
				key, err := readSecret(a.out, "Secret key")
				if err != nil {
					return err
				}
				s3.SecretKey = key
			}

			s, err := a.settings.Get(ctx)
			if err != nil {
				return err
			}
			s.SyncProvider = models.ProviderS3
			s.S3Settings = s3
			return a.saveRemote(ctx, s, test)
		},
	}
	f := cmd.Flags()
	f.StringVar(&s3.Endpoint, "endpoint", "", "endpoint URL; empty for AWS")
	f.StringVar(&s3.Region, "region", "", "region (default us-east-1)")
	f.StringVar(&s3.Bucket, "bucket", "", "bucket name")
	f.StringVar(&s3.AccessKey, "access-key", "", "access key id")
	f.StringVar(&s3.SecretKey, "secret-key", "", "secret access key")
	f.BoolVar(&test, "test", false, "test the connection before saving")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("access-key")
	return cmd
}

func (a *App) newRemoteTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check that the configured remote is reachable and writable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.engine.TestConnection(cmd.Context()); err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}
			a.println("Connection OK")
			return nil
		},
	}
}
