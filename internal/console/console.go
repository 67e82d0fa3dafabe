// Package console is the interactive admin and student client. It drives the
// authoring, listing and profile workflows against the HTTP API.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"quizforge-backend/internal/apiclient"
	"quizforge-backend/internal/authoring"
	"quizforge-backend/internal/listing"
	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/models"
	"quizforge-backend/internal/profile"
)

const (
	defaultServer      = "http://127.0.0.1:8080"
	defaultHTTPTimeout = 10 * time.Second
)

// API is everything the console needs from the server.
type API interface {
	authoring.Gateway
	listing.Gateway
	profile.Gateway
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	Session(ctx context.Context) (*models.Session, error)
}

type Config struct {
	ServerURL   string
	Token       string
	HTTPTimeout time.Duration
	Logger      *logger.Logger
}

type console struct {
	api       API
	reader    *bufio.Reader
	out       io.Writer
	log       *logger.Logger
	serverURL string
	list      *listing.View
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return errors.New("an access token is required")
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	client := apiclient.New(serverURL, cfg.Token, &http.Client{Timeout: timeout})
	return run(ctx, in, out, client, serverURL, log)
}

func run(ctx context.Context, in io.Reader, out io.Writer, api API, serverURL string, log *logger.Logger) error {
	c := &console{
		api:       api,
		reader:    bufio.NewReader(in),
		out:       out,
		log:       log,
		serverURL: serverURL,
	}

	fmt.Fprintf(out, "quizctl\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		args, err := c.prompt("\n> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if len(args) == 0 {
			continue
		}

		switch strings.ToLower(args[0]) {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "whoami":
			c.alertErr(c.whoami(ctx))
		case "quizzes":
			c.alertErr(c.loadQuizzes(ctx))
		case "toggle":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: toggle <quiz_id>")
				continue
			}
			c.alertErr(c.toggle(ctx, args[1]))
		case "new":
			c.alertErr(c.editQuiz(ctx, authoring.New(c.api, "", nil, authoring.WithLogger(c.log))))
		case "edit":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: edit <quiz_id>")
				continue
			}
			c.alertErr(c.openQuiz(ctx, args[1]))
		case "profile":
			c.alertErr(c.editProfile(ctx))
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func (c *console) prompt(label string) ([]string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return nil, err
	}
	return strings.Fields(line), nil
}

// alertErr prints failures and keeps the session alive.
func (c *console) alertErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(c.out, "alert: %v\n", describeClientError(err, c.serverURL))
}

func (c *console) alert(msg string) {
	fmt.Fprintf(c.out, "alert: %s\n", msg)
}

func (c *console) whoami(ctx context.Context) error {
	s, err := c.api.Session(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s <%s> role=%s\n", s.Name, s.Email, s.Role)
	return nil
}

func (c *console) loadQuizzes(ctx context.Context) error {
	if c.list != nil {
		if err := c.list.Refresh(ctx); err != nil {
			return err
		}
		printRows(c.out, c.list)
		return nil
	}
	v, err := listing.Load(ctx, c.api, listing.WithLogger(c.log))
	if err != nil {
		return err
	}
	c.list = v
	printRows(c.out, v)
	return nil
}

func (c *console) toggle(ctx context.Context, id string) error {
	if c.list == nil {
		if err := c.loadQuizzes(ctx); err != nil {
			return err
		}
	}
	outcome, err := c.list.TogglePublish(ctx, id, func(prompt string) bool {
		ok, err := promptYesNo(c.reader, c.out, prompt+" [y/n]: ")
		return err == nil && ok
	})
	if err != nil {
		return err
	}
	c.alert(outcome.String())
	if outcome != listing.OutcomeCancelled {
		printRows(c.out, c.list)
	}
	return nil
}

func (c *console) openQuiz(ctx context.Context, id string) error {
	q, err := c.api.GetQuiz(ctx, id)
	if err != nil {
		return err
	}
	existing := &models.QuizInput{Title: q.Title, Questions: q.Questions}
	return c.editQuiz(ctx, authoring.New(c.api, q.ID, existing, authoring.WithLogger(c.log)))
}

func describeClientError(err error, serverURL string) error {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, apiclient.ErrServiceUnavailable):
		return fmt.Errorf("quizforge service unavailable at %s", serverURL)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return errors.New("not signed in; request a new token")
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden:
		return errors.New("this action requires an admin account")
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		parts := make([]string, 0, len(apiErr.Fields))
		for field, msg := range apiErr.Fields {
			parts = append(parts, field+": "+msg)
		}
		sort.Strings(parts)
		return fmt.Errorf("%s (%s)", apiErr.Message, strings.Join(parts, "; "))
	}
	return err
}
