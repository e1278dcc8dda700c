package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/pmnps/action"
	"github.com/kbukum/pmnps/config"
	"github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/output"
	"github.com/kbukum/pmnps/validation"
	"github.com/kbukum/pmnps/version"
)

func newBuildCommand(a *app) *cobra.Command {
	var opts action.BuildOptions
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build platforms for production",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.env(cmd.Context())
			if err != nil {
				return err
			}
			return env.Build(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.Name, "name", "n", "", "platform to build together with its dependencies")
	f.StringVarP(&opts.Param, "param", "p", "", "build parameter, raw or ?name=value&name.before=value")
	f.StringVarP(&opts.Mode, "mode", "m", "", "build mode, runs scripts[\"build-<mode>\"]")
	f.BoolVarP(&opts.Install, "install", "i", false, "install dependencies before building")
	return cmd
}

func newInstallCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install dependencies at the root and in own-root platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.env(cmd.Context())
			if err != nil {
				return err
			}
			return env.Install(cmd.Context())
		},
	}
}

func newPublishCommand(a *app) *cobra.Command {
	var opts action.PublishOptions
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish packages and platforms whose version is ahead of the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.env(cmd.Context())
			if err != nil {
				return err
			}
			return env.Publish(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.OTP, "otp", "o", "", "one-time password for the registry")
	return cmd
}

func newStartCommand(a *app) *cobra.Command {
	var opts action.StartOptions
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a platform for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.env(cmd.Context())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return env.Start(ctx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "platform to start")
	return cmd
}

func newPlanCommand(a *app) *cobra.Command {
	var (
		opts   action.PlanOptions
		format string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the batches a build would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return errors.UnknownChoice("output format", format, output.Formats)
			}
			env, err := a.env(cmd.Context())
			if err != nil {
				return err
			}
			p, err := env.Plan(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), f, p, func(w io.Writer) error {
				return renderPlan(w, p)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&opts.Name, "name", "n", "", "platform to plan together with its dependencies")
	fl.StringVarP(&opts.Mode, "mode", "m", "", "build mode")
	fl.StringVarP(&format, "output", "o", "text", "output format: text, json, yaml")
	return cmd
}

func renderPlan(w io.Writer, p *action.Plan) error {
	tbl := output.NewTable("STAGE", "BATCH", "MEMBERS")
	for i, b := range p.Packages {
		tbl.AddRow("package", fmt.Sprint(i), strings.Join(b, ", "))
	}
	for i, b := range p.Platforms {
		tbl.AddRow("platform", fmt.Sprint(i), strings.Join(b, ", "))
	}
	if err := tbl.Render(w); err != nil {
		return err
	}
	for _, u := range p.Unresolved {
		if _, err := fmt.Fprintf(w, "unresolved: %s\n", u); err != nil {
			return err
		}
	}
	for _, warning := range p.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}

func newConfigCommand(a *app) *cobra.Command {
	var (
		workspaceName string
		git           bool
		buildMode     string
		publishable   bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the workspace configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			cfg, err := store.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			changed := false
			for _, name := range []string{"workspace", "git", "add-build-mode", "publishable"} {
				changed = changed || flags.Changed(name)
			}
			if !changed {
				return output.Write(cmd.OutOrStdout(), output.FormatJSON, cfg, nil)
			}

			v := validation.New().Pattern("add-build-mode", buildMode, `^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
			if flags.Changed("workspace") {
				v.Required("workspace", workspaceName)
			}
			if appErr := v.Validate(); appErr != nil {
				return appErr
			}

			err = store.Update(func(c *config.Config) {
				if flags.Changed("workspace") {
					c.Workspace = workspaceName
				}
				if flags.Changed("git") {
					c.Git = git
				}
				if flags.Changed("publishable") {
					c.Publishable = publishable
				}
				if flags.Changed("add-build-mode") {
					c.AddBuildMode(buildMode)
				}
			})
			if err != nil {
				return err
			}
			a.printer.Success("config saved to %s", store.Path())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&workspaceName, "workspace", "", "workspace name")
	f.BoolVar(&git, "git", false, "track the workspace with git")
	f.StringVar(&buildMode, "add-build-mode", "", "declare a build mode")
	f.BoolVar(&publishable, "publishable", false, "allow the publish command")
	return cmd
}

func newVersionCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return errors.UnknownChoice("output format", format, output.Formats)
			}
			info := version.GetVersionInfo()
			return output.Write(cmd.OutOrStdout(), f, info, func(w io.Writer) error {
				_, err := io.WriteString(w, info.String())
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text, json, yaml")
	return cmd
}
