// Package pullhttp fetches a single URL into the user's Downloads directory.
package pullhttp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanq16/pdfpull/internal/output"
	"github.com/tanq16/pdfpull/internal/utils"
)

type Downloader struct {
	client  utils.HTTPDoer
	console *output.Console
	homeDir string
	now     func() time.Time
	log     zerolog.Logger
}

func NewDownloader(client utils.HTTPDoer, console *output.Console, homeDir string) *Downloader {
	return &Downloader{
		client:  client,
		console: console,
		homeDir: homeDir,
		now:     time.Now,
		log:     utils.GetLogger("downloader"),
	}
}

// Run downloads link and reports the outcome on the console. The returned
// error is the same one that was reported.
func (d *Downloader) Run(ctx context.Context, link string) error {
	transfer, err := d.Download(ctx, link)
	if err != nil {
		if errors.Is(err, utils.ErrWrite) {
			d.console.PrintError(fmt.Sprintf("%s Error occurred while writing file: %v", output.StyleSymbols["fail"], err))
		} else {
			d.console.PrintError(fmt.Sprintf("%s Error occurred while downloading file: %v", output.StyleSymbols["fail"], err))
		}
		return err
	}
	d.console.PrintSuccess(fmt.Sprintf("%s PDF downloaded successfully: %s", output.StyleSymbols["pass"], transfer.DestinationPath))
	return nil
}

// Download performs the probe and the streaming transfer. The destination
// file is only opened once the GET response is in hand; partial output is
// left on disk when the transfer or a write fails.
func (d *Downloader) Download(ctx context.Context, link string) (*utils.Transfer, error) {
	transfer := utils.NewTransfer(link, utils.DestinationPath(d.homeDir, d.now()))
	log := d.log.With().Str("transfer", transfer.ID).Logger()
	log.Debug().Str("url", link).Str("output", transfer.DestinationPath).Msg("Transfer created")

	d.console.PrintPending("Initializing...")
	if err := transfer.Advance(utils.StateProbingSize); err != nil {
		return transfer, err
	}
	total, err := probeSize(ctx, link, d.client)
	if err != nil {
		log.Debug().Err(err).Msg("Size probe failed")
		return transfer, d.fail(transfer, fmt.Errorf("%w: %v", utils.ErrProbe, err))
	}
	if err := transfer.SetTotal(total); err != nil {
		return transfer, d.fail(transfer, err)
	}
	if transfer.SizeKnown() {
		d.console.PrintInfo(fmt.Sprintf("File size: %s", utils.FormatMegabytes(transfer.TotalBytes)))
	} else {
		d.console.PrintInfo("File size: unknown")
	}
	log.Debug().Int64("size", transfer.TotalBytes).Msg("Size probe complete")

	bar := output.NewProgressBar(d.console.Out, transfer.TotalBytes)
	if err := transfer.Advance(utils.StateTransferring); err != nil {
		return transfer, err
	}
	resp, err := openStream(ctx, link, d.client)
	if err != nil {
		bar.Abort()
		return transfer, d.fail(transfer, fmt.Errorf("%w: %v", utils.ErrTransfer, err))
	}
	defer resp.Body.Close()

	outFile, err := os.OpenFile(transfer.DestinationPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		bar.Abort()
		return transfer, d.fail(transfer, fmt.Errorf("%w: error creating output file: %v", utils.ErrWrite, err))
	}

	copyErr := copyBody(resp.Body, outFile, func(n int) {
		transfer.Add(n)
		bar.Add(int64(n))
	})
	closeErr := outFile.Close()
	if copyErr != nil {
		bar.Abort()
		log.Debug().Err(copyErr).Int64("written", transfer.BytesTransferred).Msg("Transfer interrupted")
		return transfer, d.fail(transfer, copyErr)
	}
	if closeErr != nil {
		bar.Abort()
		return transfer, d.fail(transfer, fmt.Errorf("%w: error closing output file: %v", utils.ErrWrite, closeErr))
	}
	bar.Finish()

	if err := transfer.Advance(utils.StateSucceeded); err != nil {
		return transfer, err
	}
	log.Debug().Int64("written", transfer.BytesTransferred).
		Dur("elapsed", time.Since(transfer.StartTime)).
		Msg("Transfer complete")
	return transfer, nil
}

func (d *Downloader) fail(transfer *utils.Transfer, err error) error {
	if advErr := transfer.Advance(utils.StateFailed); advErr != nil {
		return errors.Join(err, advErr)
	}
	return err
}
