package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/peterh/liner"
	"github.com/rpupo63/portfolio-backend/client"
	"github.com/rpupo63/portfolio-backend/models"
)

const prompt = "portfolio> "

var errExit = errors.New("exit")

// lineReader is the part of *liner.State the shell uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(item string)
}

// shell is an interactive admin session. The token lives in the client only
// and is gone when the shell exits.
type shell struct {
	client *client.Client
	in     lineReader
	out    io.Writer
}

func newShell(c *client.Client, in lineReader, out io.Writer) *shell {
	return &shell{client: c, in: in, out: out}
}

// Run reads commands until exit, EOF or Ctrl-C. Command errors are printed
// and the session continues.
func (s *shell) Run(ctx context.Context) error {
	defer s.client.Logout()

	for {
		line, err := s.in.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.in.AppendHistory(line)

		if err := s.Execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// Execute runs a single command line.
func (s *shell) Execute(ctx context.Context, line string) error {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "help":
		s.help()
		return nil
	case "exit", "quit":
		return errExit
	case "login":
		return s.login(ctx, rest)
	case "logout":
		s.client.Logout()
		fmt.Fprintln(s.out, "logged out")
		return nil
	case "list":
		projects, err := s.client.ListProjects(ctx)
		if err != nil {
			return err
		}
		return writeProjectTable(s.out, projects)
	case "get":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		project, err := s.client.GetProject(ctx, id)
		if err != nil {
			return err
		}
		return writeJSON(s.out, project)
	case "create":
		var input models.ProjectCreate
		if err := json.Unmarshal([]byte(rest), &input); err != nil {
			return fmt.Errorf("create expects a JSON object: %w", err)
		}
		project, err := s.client.CreateProject(ctx, input)
		if err != nil {
			return err
		}
		return writeJSON(s.out, project)
	case "update":
		rawID, body, _ := strings.Cut(rest, " ")
		id, err := parseID(rawID)
		if err != nil {
			return err
		}
		var patch models.ProjectPatch
		if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &patch); err != nil {
			return fmt.Errorf("update expects <id> followed by a JSON object of string or null values: %w", err)
		}
		project, err := s.client.UpdateProject(ctx, id, patch)
		if err != nil {
			return err
		}
		return writeJSON(s.out, project)
	case "delete":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		msg, err := s.client.DeleteProject(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, msg)
		return nil
	default:
		return fmt.Errorf("unknown command %q, type help", name)
	}
}

func (s *shell) login(ctx context.Context, username string) error {
	if username == "" {
		var err error
		if username, err = s.in.Prompt("username: "); err != nil {
			return err
		}
	}

	password, err := s.in.PasswordPrompt("password: ")
	if err != nil {
		return err
	}

	if err := s.client.Login(ctx, strings.TrimSpace(username), password); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "logged in")
	return nil
}

func (s *shell) help() {
	fmt.Fprint(s.out, `commands:
  login [username]          log in, the password is read without echo
  logout                    forget the access token
  list                      list projects
  get <id>                  show a project
  create <json>             create a project, e.g. create {"title":"X","short_description":"Y"}
  update <id> <json>        update the given fields, null clears an optional field
  delete <id>               delete a project
  help                      show this help
  exit                      leave the shell
`)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid project id %q", raw)
	}
	return id, nil
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeProjectTable(out io.Writer, projects []models.Project) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTECH STACK\tCREATED")
	for _, p := range projects {
		techStack := ""
		if p.TechStack != nil {
			techStack = *p.TechStack
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Title, techStack, p.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
