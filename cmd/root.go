package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	pullhttp "github.com/tanq16/pdfpull/internal/downloaders/http"
	"github.com/tanq16/pdfpull/internal/output"
	"github.com/tanq16/pdfpull/internal/utils"
)

// PullVersion is overridden at build time with -ldflags "-X".
var PullVersion = "dev"

// homeDir is swapped out by tests.
var homeDir = os.UserHomeDir

var errNoHome = errors.New("cannot determine home directory")

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "pdfpull <URL>",
		Short:         "pdfpull downloads a file into ~/Downloads with a progress bar",
		Version:       PullVersion,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.InitLogger(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			console := &output.Console{Out: stdout, Err: stderr}
			if len(args) == 0 {
				console.PrintError("Provide URL in the args!")
				console.PrintError("Usage: pdfpull <URL>")
				return utils.ErrUsage
			}
			home, err := homeDir()
			if err != nil {
				err = fmt.Errorf("%w: %v", errNoHome, err)
				console.PrintError(err.Error())
				return err
			}
			client := utils.NewPullHTTPClient(utils.HTTPClientConfig{UserAgent: utils.ToolUserAgent})
			downloader := pullhttp.NewDownloader(client, console, home)
			if err := downloader.Run(cmd.Context(), args[0]); err != nil {
				// already reported; a failed download still ends with status 0
				log.Debug().Err(err).Msg("Download finished with error")
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func Execute() {
	err := newRootCmd(os.Stdout, os.Stderr).Execute()
	if err != nil && !errors.Is(err, utils.ErrUsage) && !errors.Is(err, errNoHome) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
