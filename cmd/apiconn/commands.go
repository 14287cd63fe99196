package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/samvad-hq/apiconnection-toolkit/internal/app"
	"github.com/samvad-hq/apiconnection-toolkit/internal/config"
	"github.com/samvad-hq/apiconnection-toolkit/internal/logger"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	base    string
	profile string
	headers []string
	timeout time.Duration
}

func newRootCmd(cfg *config.Config, log logger.Logger) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "apiconn",
		Short:         "Call JSON REST endpoints from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.base, "base", "", "base address relative URLs resolve against")
	root.PersistentFlags().StringVar(&flags.profile, "profile", "", "profile id from the profiles file")
	root.PersistentFlags().StringArrayVarP(&flags.headers, "header", "H", nil, "default header as name:value (repeatable)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "per-call timeout (overrides config)")

	runner := func(cmd *cobra.Command) (*app.Runner, error) {
		return app.NewRunner(cfg, log, app.Overrides{
			BaseAddress: flags.base,
			Profile:     flags.profile,
			Headers:     flags.headers,
			Timeout:     flags.timeout,
		}, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	root.AddCommand(
		newGetCmd(runner),
		newSendCmd(runner, http.MethodPost),
		newSendCmd(runner, http.MethodPut),
		newDeleteCmd(runner),
		newUploadCmd(runner),
	)
	return root
}

type runnerFactory func(cmd *cobra.Command) (*app.Runner, error)

func newGetCmd(newRunner runnerFactory) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "GET a JSON document (or array with --list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			return r.Get(cmd.Context(), args[0], list)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "decode the body as a JSON array")
	return cmd
}

func newSendCmd(newRunner runnerFactory, method string) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " <url>",
		Short: method + " a JSON body (arrays are sent as lists)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readData(cmd.InOrStdin(), data)
			if err != nil {
				return err
			}
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			return r.Send(cmd.Context(), method, args[0], body)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "-", "JSON body, @path to read a file, or - for stdin")
	return cmd
}

func newDeleteCmd(newRunner runnerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <url>",
		Short: "DELETE a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			return r.Delete(cmd.Context(), args[0])
		},
	}
}

func newUploadCmd(newRunner runnerFactory) *cobra.Command {
	u := app.Upload{}
	cmd := &cobra.Command{
		Use:   "upload <url>",
		Short: "Upload one file as multipart/form-data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if u.Path == "" {
				return fmt.Errorf("--file is required")
			}
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			u.URL = args[0]
			return r.Upload(cmd.Context(), u)
		},
	}
	cmd.Flags().StringVarP(&u.Path, "file", "f", "", "path of the file to upload")
	cmd.Flags().StringVar(&u.FieldName, "field", "file", "form field name")
	cmd.Flags().StringVar(&u.FileName, "name", "", "file name sent to the server (default: base name of --file)")
	cmd.Flags().StringVar(&u.ContentType, "content-type", "", "content type of the part (default: from extension)")
	cmd.Flags().StringVarP(&u.Method, "method", "X", http.MethodPost, "POST or PUT")
	return cmd
}

func readData(stdin io.Reader, data string) ([]byte, error) {
	switch {
	case data == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		return b, nil
	default:
		return []byte(data), nil
	}
}
