// Package main implements bionexus, an operator CLI that runs single Bio-Nexus
// prompts against the configured model without starting the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/phrazzld/bionexus-api/internal/config"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/platform/gemini"
	"github.com/phrazzld/bionexus-api/internal/platform/logger"
	"github.com/phrazzld/bionexus-api/internal/service"
	"github.com/phrazzld/bionexus-api/internal/session"
	"github.com/urfave/cli/v2"
)

// exitDegraded is the exit status of a command whose model call failed.
const exitDegraded = 2

// runtime carries the process dependencies the commands use.
type runtime struct {
	stdin      io.Reader
	stdinIsTTY func() bool
	stdout     io.Writer
	stderr     io.Writer

	loadConfig func() (*config.Config, error)
	newModel   func(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Model, error)
	wait       generation.WaitFunc
}

func defaultRuntime() runtime {
	return runtime{
		stdin:      os.Stdin,
		stdinIsTTY: stdinIsTerminal,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: config.Load,
		newModel:   newGeminiModel,
	}
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func newGeminiModel(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Model, error) {
	client, err := gemini.NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func main() {
	if err := newApp(defaultRuntime()).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func newApp(rt runtime) *cli.App {
	return &cli.App{
		Name:      "bionexus",
		Usage:     "Run Bio-Nexus prompts from the command line",
		Writer:    rt.stdout,
		ErrWriter: rt.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Usage:   "Response language (en or vi)",
				Aliases: []string{"l"},
				Value:   string(domain.LanguageEnglish),
			},
			&cli.BoolFlag{
				Name:  "fallback",
				Usage: "Print the fallback text and exit 0 when the model call fails",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level written to stderr",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			askCommand(rt),
			solveCommand(rt),
			speakCommand(rt),
		},
		// Errors are printed once by main.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// deps are the services built for one command run.
type deps struct {
	logger    *slog.Logger
	sessions  *session.Store
	knowledge *service.KnowledgeService
	scholar   *service.ScholarService
	patient   *service.PatientService
	lang      domain.Language
}

func (rt runtime) build(c *cli.Context) (*deps, error) {
	level, _ := logger.ParseLevel(c.String("log-level"))
	log := logger.New(rt.stderr, level)

	lang, err := domain.ParseLanguage(c.String("lang"))
	if err != nil {
		return nil, err
	}

	cfg, err := rt.loadConfig()
	if err != nil {
		return nil, err
	}

	model, err := rt.newModel(c.Context, cfg.LLM, log)
	if err != nil {
		return nil, err
	}

	var gatewayOpts []generation.GatewayOption
	if rt.wait != nil {
		gatewayOpts = append(gatewayOpts, generation.WithWait(rt.wait))
	}
	gateway, err := generation.NewGateway(model, gemini.RetryPolicy(cfg.LLM), log, gatewayOpts...)
	if err != nil {
		return nil, err
	}

	d := &deps{logger: log, sessions: session.NewStore(log), lang: lang}
	if d.knowledge, err = service.NewKnowledgeService(gateway, log); err != nil {
		return nil, err
	}
	if d.scholar, err = service.NewScholarService(gateway, d.sessions, log); err != nil {
		return nil, err
	}
	if d.patient, err = service.NewPatientService(gateway, d.sessions, log); err != nil {
		return nil, err
	}
	return d, nil
}

// readPrompt joins the positional arguments, or reads piped stdin when there
// are none.
func (rt runtime) readPrompt(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if rt.stdinIsTTY() {
		return "", cli.Exit("no prompt given: pass it as arguments or pipe it on stdin", 1)
	}
	data, err := io.ReadAll(rt.stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", cli.Exit("stdin is empty", 1)
	}
	return text, nil
}

// finish prints a degraded reply's failure and decides the exit status.
func finish(c *cli.Context, degraded bool, kind generation.FailureKind) error {
	if !degraded || c.Bool("fallback") {
		return nil
	}
	return cli.Exit(fmt.Sprintf("model call failed: %s", kind), exitDegraded)
}

func askCommand(rt runtime) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the knowledge hub a question",
		ArgsUsage: "[prompt]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mode",
				Usage:   "Persona: student, medpro or patient",
				Aliases: []string{"m"},
				Value:   string(domain.ModeStudent),
			},
		},
		Action: func(c *cli.Context) error {
			mode, err := domain.ParseMode(c.String("mode"))
			if err != nil {
				return err
			}
			prompt, err := rt.readPrompt(c)
			if err != nil {
				return err
			}
			d, err := rt.build(c)
			if err != nil {
				return err
			}

			reply, err := d.knowledge.Search(c.Context, prompt, mode, d.lang)
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.stdout, reply.Text)
			return finish(c, reply.Degraded, reply.ErrorKind)
		},
	}
}

func solveCommand(rt runtime) *cli.Command {
	return &cli.Command{
		Name:  "solve",
		Usage: "Solve a problem from an image, or the built-in ADH problem without one",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "image",
				Usage:   "Path to a problem image",
				Aliases: []string{"i"},
			},
		},
		Action: func(c *cli.Context) error {
			img, err := readImage(c.Path("image"))
			if err != nil {
				return err
			}
			d, err := rt.build(c)
			if err != nil {
				return err
			}

			sess, err := d.sessions.Create(d.lang, domain.ModeStudent)
			if err != nil {
				return err
			}
			reply, err := d.scholar.Solve(c.Context, sess.ID, img)
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.stdout, reply.Text)
			return finish(c, reply.Degraded, reply.ErrorKind)
		},
	}
}

func readImage(path string) (*generation.Image, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return &generation.Image{Data: data, MIMEType: mimeType}, nil
}

func speakCommand(rt runtime) *cli.Command {
	return &cli.Command{
		Name:      "speak",
		Usage:     "Synthesize speech into a WAV file",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "out",
				Usage:    "Output WAV file",
				Aliases:  []string{"o"},
				Required: true,
			},
			&cli.StringFlag{
				Name:  "voice",
				Usage: "Voice preset: narrator or patient",
			},
		},
		Action: func(c *cli.Context) error {
			voice, err := service.ParseVoice(c.String("voice"))
			if err != nil {
				return err
			}
			text, err := rt.readPrompt(c)
			if err != nil {
				return err
			}
			d, err := rt.build(c)
			if err != nil {
				return err
			}

			reply, err := d.patient.Speak(c.Context, text, voice)
			if err != nil {
				return err
			}
			if reply.Degraded {
				// There is no fallback audio; the file is not written.
				fmt.Fprintln(rt.stderr, "no audio produced:", reply.ErrorKind)
				return finish(c, true, reply.ErrorKind)
			}

			out := c.Path("out")
			if err := writeAudio(out, reply.Audio); err != nil {
				return err
			}
			fmt.Fprintln(rt.stdout, out)
			return nil
		},
	}
}
