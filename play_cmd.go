package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/documentarian/internal/audio"
	"github.com/dgnsrekt/documentarian/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play FILE|-",
	Short: "Play a base64 PCM payload",
	Long: paragraph(fmt.Sprintf("\n%s a base64 encoded payload of mono 16-bit PCM at 24 kHz, as returned by the speech service.",
		keyword("Play"))),
	Example: paragraph("documentarian play speech.b64\ncat speech.b64 | documentarian play -"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := readPayload(args[0])
		if err != nil {
			return err
		}

		buf, err := audio.DecodePCM(payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s, %s\n",
			keyword("Playing"),
			buf.Duration().Round(100*time.Millisecond),
			humanize.Bytes(uint64(buf.Size())), //nolint:gosec
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		player := audio.NewPlayer(audio.OpenOto)
		defer func() {
			if err := player.Close(); err != nil {
				log.Debug("unable to close player", "error", err)
			}
		}()

		if err := player.Play(ctx, buf); err != nil && !errors.Is(err, ctx.Err()) {
			return err
		}
		return nil
	},
}

func readPayload(path string) (string, error) {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(utils.ExpandPath(path))
	}
	if err != nil {
		return "", fmt.Errorf("unable to read payload: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}
