package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           config.CLIName,
		Short:         config.CmdDescRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, config.FlagConfig, "", config.FlagDescConfig)
	root.PersistentFlags().BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)
	root.PersistentFlags().String(config.FlagBackend, config.DefaultBackendURL, config.FlagDescBackend)
	_ = a.v.BindPFlag(config.KeyBackendURL, root.PersistentFlags().Lookup(config.FlagBackend))

	root.AddCommand(a.serveCommand(), a.checkCommand(), a.versionCommand())
	return root
}

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdDescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.setupLogging()

			s, err := a.settings()
			if err != nil {
				return err
			}

			// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logStartupInfo(s)
			return serve(ctx, s)
		},
	}

	cmd.Flags().String(config.FlagAddr, config.LocalhostBindAddr, config.FlagDescAddr)
	cmd.Flags().String(config.FlagPort, config.DefaultPort, config.FlagDescPort)
	cmd.Flags().String(config.FlagLang, config.DefaultLanguage,
		fmt.Sprintf(config.FlagDescLang, strings.Join(config.SupportedLanguages, ", ")))
	_ = a.v.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup(config.FlagAddr))
	_ = a.v.BindPFlag(config.KeyServerPort, cmd.Flags().Lookup(config.FlagPort))
	_ = a.v.BindPFlag(config.KeyLanguage, cmd.Flags().Lookup(config.FlagLang))
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdCheck,
		Short: config.CmdDescCheck,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.setupLogging()

			s, err := a.settings()
			if err != nil {
				return err
			}
			client, err := backend.NewClient(s.BackendURL, s.BackendTimeout)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), client, s.BackendURL)
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdVersion,
		Short: config.CmdDescVersion,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
