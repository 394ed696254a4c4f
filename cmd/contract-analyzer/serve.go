package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-analyzer/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.release()
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			store := a.persister()
			srv, err := server.New(server.Config{
				Port:          a.cfg.Server.Port,
				MaxUploadMB:   a.cfg.Server.MaxUploadMB,
				ReadTimeout:   a.cfg.Server.ReadTimeout,
				WriteTimeout:  a.cfg.Server.WriteTimeout,
				LLMConfigured: a.cfg.ValidateLLM() == nil,
				Version:       version,
			}, a.processor(store), store, a.exporter(), a.logger)
			if err != nil {
				return err
			}
			cmd.Printf("Contract Analyzer UI on http://localhost%s\n", srv.Addr())
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default $PORT or 8501)")
	return cmd
}
