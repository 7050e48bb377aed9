package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getmockd/mockie/pkg/admin"
	"github.com/getmockd/mockie/pkg/route"
)

// addOptions holds the add command flags.
type addOptions struct {
	method      string
	path        string
	status      int
	delayMs     uint64
	response    string
	interactive bool
}

func newAddCmd(opts *globalOptions) *cobra.Command {
	a := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a mock route on a running server",
		Long: `Register a mock route on a running server. A route with the same method
and path is replaced.`,
		Example: `  # Return {"pong": true} for GET /ping
  mockie add --method GET --path /ping --response '{"pong": true}'

  # Slow endpoint with a custom status
  mockie add -X POST -p /orders --status 201 --delay-ms 1500 -r '{"id": 1}'

  # Fill in the route with a form
  mockie add --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.interactive {
				if err := addRouteForm(a).Run(); err != nil {
					return err
				}
			}

			body, err := a.body()
			if err != nil {
				return err
			}

			client, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			if err := client.AddRoute(cmd.Context(), body); err != nil {
				return connectionError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Route added: %s %s -> %d\n", strings.ToUpper(a.method), a.path, a.status)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&a.method, "method", "X", "GET", "HTTP method to match")
	f.StringVarP(&a.path, "path", "p", "", "Exact URL path to match")
	f.IntVarP(&a.status, "status", "s", 200, "Status code to return")
	f.Uint64Var(&a.delayMs, "delay-ms", 0, "Delay before responding, in milliseconds")
	f.StringVarP(&a.response, "response", "r", "", "JSON response body (default null)")
	f.BoolVarP(&a.interactive, "interactive", "i", false, "Prompt for the route")
	return cmd
}

// body validates the options locally and builds the admin request body.
func (a *addOptions) body() (admin.AddRouteBody, error) {
	if strings.TrimSpace(a.path) == "" {
		return admin.AddRouteBody{}, ErrMissingPath
	}
	if err := validateResponse(a.response); err != nil {
		return admin.AddRouteBody{}, err
	}

	status := a.status
	delay := a.delayMs
	body := admin.AddRouteBody{
		Method:  a.method,
		Path:    a.path,
		Status:  &status,
		DelayMs: &delay,
	}
	if strings.TrimSpace(a.response) != "" {
		body.Response = json.RawMessage(a.response)
	}
	return body, nil
}

func validateResponse(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if !json.Valid([]byte(s)) {
		return ErrInvalidResponse
	}
	return nil
}

func validateStatus(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < route.MinStatus || n > route.MaxStatus {
		return fmt.Errorf("status must be a number between %d and %d", route.MinStatus, route.MaxStatus)
	}
	return nil
}

func validateDelay(s string) error {
	if _, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err != nil {
		return fmt.Errorf("delay must be a whole number of milliseconds")
	}
	return nil
}

// addRouteForm builds the interactive form. Field values are written back
// to a when the form completes.
func addRouteForm(a *addOptions) *huh.Form {
	statusStr := strconv.Itoa(a.status)
	delayStr := strconv.FormatUint(a.delayMs, 10)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What is the URL path to match?").
				Placeholder("/api/v1/users").
				Value(&a.path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return ErrMissingPath
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("What HTTP method should it respond to?").
				Options(
					huh.NewOption("GET", "GET"),
					huh.NewOption("POST", "POST"),
					huh.NewOption("PUT", "PUT"),
					huh.NewOption("DELETE", "DELETE"),
					huh.NewOption("PATCH", "PATCH"),
				).
				Value(&a.method),
			huh.NewInput().
				Title("What status code should it return?").
				Value(&statusStr).
				Validate(func(s string) error {
					if err := validateStatus(s); err != nil {
						return err
					}
					a.status, _ = strconv.Atoi(strings.TrimSpace(s))
					return nil
				}),
			huh.NewInput().
				Title("Delay before responding (ms)").
				Value(&delayStr).
				Validate(func(s string) error {
					if err := validateDelay(s); err != nil {
						return err
					}
					a.delayMs, _ = strconv.ParseUint(strings.TrimSpace(s), 10, 64)
					return nil
				}),
			huh.NewText().
				Title("Response Body (JSON)").
				Placeholder(`{"status": "ok"}`).
				Value(&a.response).
				Validate(validateResponse),
		),
	)
}
