package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/documentarian/internal/audio"
	"github.com/dgnsrekt/documentarian/internal/document"
	"github.com/dgnsrekt/documentarian/internal/oembed"
	"github.com/dgnsrekt/documentarian/internal/session"
	"github.com/dgnsrekt/documentarian/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	summarizeTranscript string
	summarizeSample     bool
	summarizeOutput     string
	summarizeRead       bool

	summarizeCmd = &cobra.Command{
		Use:   "summarize [URL]",
		Short: "Summarize a video or transcript without the TUI",
		Long: paragraph(fmt.Sprintf("\n%s a YouTube link, a transcript file or the built-in sample, then print the summary and its sources.",
			keyword("Summarize"))),
		Example: paragraph("documentarian summarize https://youtu.be/dQw4w9WgXcQ\n" +
			"documentarian summarize --transcript talk.md --output summary.md\n" +
			"cat talk.txt | documentarian summarize --transcript -\n" +
			"documentarian summarize --sample --read"),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := summarizeInput{
				transcript: summarizeTranscript,
				sample:     summarizeSample,
				output:     summarizeOutput,
				read:       summarizeRead,
			}
			if len(args) == 1 {
				in.url = args[0]
			}
			return runSummarize(cmd, in)
		},
	}
)

// summarizeInput selects exactly one source: url, transcript or sample.
type summarizeInput struct {
	url        string
	transcript string // path, or "-" for stdin
	sample     bool

	output string
	read   bool
}

func (in summarizeInput) validate() error {
	n := 0
	for _, set := range []bool{in.url != "", in.transcript != "", in.sample} {
		if set {
			n++
		}
	}
	switch n {
	case 0:
		return errors.New("nothing to summarize: pass a URL, --transcript or --sample")
	case 1:
		return nil
	default:
		return errors.New("pass only one of URL, --transcript or --sample")
	}
}

func runSummarize(cmd *cobra.Command, in summarizeInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if term.IsTerminal(int(os.Stderr.Fd())) {
		go reportProgress(cmd.ErrOrStderr(), svc.session.Subscribe())
	}

	if err := summarize(ctx, svc.session, in); err != nil {
		st := svc.session.Snapshot()
		if st.Phase == session.PhaseError && st.Err != "" {
			log.Debug("summarize failed", "error", err)
			return errors.New(st.Err)
		}
		return err
	}

	st := svc.session.Snapshot()
	out, err := renderSummary(st)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)

	if in.output != "" {
		if err := writeDocument(in.output, st); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), subtle.Render("Wrote summary to "+in.output))
	}

	if in.read {
		fmt.Fprintln(cmd.ErrOrStderr(), subtle.Render("Reading aloud, ctrl+c to stop…"))
		err := svc.session.ReadAloud(ctx, session.FullDocument)
		switch {
		case err == nil, errors.Is(err, audio.ErrInterrupted), errors.Is(err, context.Canceled):
		default:
			if msg := svc.session.Snapshot().ReadErr; msg != "" {
				log.Debug("read aloud failed", "error", err)
				return errors.New(msg)
			}
			return err
		}
	}
	return nil
}

func summarize(ctx context.Context, sess *session.Session, in summarizeInput) error {
	switch {
	case in.sample:
		return sess.Sample(ctx)
	case in.transcript != "":
		text, meta, err := readTranscript(in.transcript)
		if err != nil {
			return err
		}
		return sess.SummarizeTranscript(ctx, text, meta)
	default:
		return sess.SummarizeURL(ctx, in.url)
	}
}

// readTranscript reads a transcript from path, or stdin when path is "-".
// An exported summary's front matter supplies the metadata.
func readTranscript(path string) (string, *oembed.VideoMetadata, error) {
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
		return "", nil, fmt.Errorf("unable to read transcript: %w", err)
	}

	doc, body, err := document.ParseFrontMatter(content)
	if err != nil {
		return "", nil, err
	}
	return body, doc.Metadata, nil
}

func reportProgress(w io.Writer, updates <-chan session.State) {
	var last session.Phase
	for st := range updates {
		if st.Phase == last {
			continue
		}
		last = st.Phase
		switch st.Phase {
		case session.PhaseMetadataPending:
			fmt.Fprintln(w, subtle.Render("Fetching video details…"))
		case session.PhaseSummarizing:
			if st.Metadata != nil {
				fmt.Fprintln(w, subtle.Render(fmt.Sprintf("Analyzing %q by %s…", st.Metadata.Title, st.Metadata.AuthorName)))
				continue
			}
			fmt.Fprintln(w, subtle.Render("Analyzing video & searching…"))
		case session.PhaseError:
			fmt.Fprintln(w, failure.Render(st.Err))
		}
	}
}

func renderSummary(st session.State) (string, error) {
	r, err := glamour.NewTermRenderer(
		utils.GlamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
		glamour.WithEmoji(),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}

	var b strings.Builder
	if meta := st.Metadata; meta != nil {
		fmt.Fprintf(&b, "\n  %s\n  %s\n", keyword(meta.Title), subtle.Render(meta.AuthorName))
	}

	out, err := r.Render(st.Summary)
	if err != nil {
		return "", fmt.Errorf("unable to render summary: %w", err)
	}
	b.WriteString(out)

	if len(st.Sources) > 0 {
		b.WriteString("  " + keyword("Sources") + "\n\n")
		for _, src := range st.Sources {
			fmt.Fprintf(&b, "  %s %s\n", document.Host(src), subtle.Render(src))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func writeDocument(path string, st session.State) error {
	f, err := os.Create(utils.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc := document.Document{
		URL:       st.URL,
		Metadata:  st.Metadata,
		Summary:   st.Summary,
		Sources:   st.Sources,
		Generated: time.Now(),
	}
	if err := doc.Export(f); err != nil {
		return err
	}
	return f.Close()
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeTranscript, "transcript", "", "summarize a transcript file (- for stdin)")
	summarizeCmd.Flags().BoolVar(&summarizeSample, "sample", false, "summarize the built-in sample transcript")
	summarizeCmd.Flags().StringVarP(&summarizeOutput, "output", "o", "", "write the summary as markdown with front matter")
	summarizeCmd.Flags().BoolVar(&summarizeRead, "read", false, "read the full summary aloud after printing it")
}
