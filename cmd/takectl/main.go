// takectl takes a timed assignment from the terminal: it starts the
// attempt, renders a live countdown, and submits the held answers either
// when the user confirms or automatically when the window expires.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/learnhub/assignment-service/internal/clock"
	"github.com/learnhub/assignment-service/internal/countdown"
	"github.com/learnhub/assignment-service/internal/handlers"
	"github.com/learnhub/assignment-service/internal/middleware"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/services"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	var (
		serverURL    = flag.String("server", "http://localhost:8080", "assignment service base URL")
		token        = flag.String("token", "", "bearer token (minted locally from -user/-secret when empty)")
		userID       = flag.String("user", "", "user id to mint a local token for")
		secret       = flag.String("secret", "", "shared JWT secret for local token minting")
		assignmentID = flag.String("assignment", "", "assignment id to take")
		answersFlag  = flag.String("answers", "", "comma-separated answer indexes, e.g. 0,2,1,3")
	)
	flag.Parse()

	if *assignmentID == "" {
		fmt.Fprintln(os.Stderr, "takectl: -assignment is required")
		os.Exit(2)
	}

	bearer := *token
	if bearer == "" {
		if *userID == "" || *secret == "" {
			fmt.Fprintln(os.Stderr, "takectl: provide -token, or -user and -secret to mint one")
			os.Exit(2)
		}
		minted, err := middleware.GenerateToken(*userID, models.RoleStudent, *secret, time.Hour)
		if err != nil {
			fmt.Fprintf(os.Stderr, "takectl: failed to mint token: %v\n", err)
			os.Exit(1)
		}
		bearer = minted
	}

	answers, err := parseAnswers(*answersFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "takectl: %v\n", err)
		os.Exit(2)
	}

	c := &client{
		baseURL: strings.TrimRight(*serverURL, "/"),
		token:   bearer,
		http:    &http.Client{Timeout: 15 * time.Second},
	}

	if err := run(c, *assignmentID, answers); err != nil {
		fmt.Fprintf(os.Stderr, "takectl: %v\n", err)
		os.Exit(1)
	}
}

func run(c *client, assignmentID string, answers []int) error {
	ctx := context.Background()

	var assignment handlers.AssignmentView
	if err := c.get(ctx, "/api/v1/assignments/"+assignmentID, &assignment); err != nil {
		return fmt.Errorf("fetch assignment: %w", err)
	}

	var window services.StartAttemptResult
	if err := c.post(ctx, "/api/v1/assignments/"+assignmentID+"/start", nil, &window); err != nil {
		return fmt.Errorf("start attempt: %w", err)
	}

	fmt.Printf("%s — %d questions, expires %s\n",
		assignment.Title,
		len(assignment.Questions),
		window.ExpiresAt.Local().Format(time.RFC1123))

	submitted := make(chan struct{})
	autoSubmit := func() {
		fmt.Println("\nTime is up, submitting held answers")
		if err := reportSubmit(c.submit(ctx, assignmentID, answers)); err != nil {
			fmt.Fprintf(os.Stderr, "takectl: %v\n", err)
		}
		close(submitted)
	}

	presenter := countdown.New(clock.Real(), window.ExpiresAt, autoSubmit,
		countdown.WithTickHandler(renderTick))
	defer presenter.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go presenter.Run(runCtx)

	fmt.Println("Press Enter to submit now")
	confirmed := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(confirmed)
	}()

	select {
	case <-submitted:
		return nil
	case <-confirmed:
		presenter.Stop()
		fmt.Println()
		return reportSubmit(c.submit(ctx, assignmentID, answers))
	}
}

// renderTick redraws the countdown in place, flagging the warning bucket
// so the user knows the window is closing.
func renderTick(snapshot countdown.Snapshot) {
	marker := " "
	if snapshot.Bucket == countdown.BucketWarning {
		marker = "!"
	}
	fmt.Printf("\r%s %s remaining", marker, snapshot.Display)
}

func reportSubmit(result *services.SubmitResult, err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("Graded: %.1f%% (%d/%d correct)\n",
		result.Grade, result.CorrectAnswers, result.TotalQuestions)
	return nil
}

func (c *client) submit(ctx context.Context, assignmentID string, answers []int) (*services.SubmitResult, error) {
	payload := handlers.SubmitAssignmentRequest{Answers: answers}
	var result services.SubmitResult
	if err := c.post(ctx, "/api/v1/assignments/"+assignmentID+"/submit", payload, &result); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	return &result, nil
}

func (c *client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr handlers.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			if apiErr.Expired {
				return fmt.Errorf("%s (the attempt window has expired)", apiErr.Message)
			}
			return fmt.Errorf("%s (HTTP %d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, path)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseAnswers(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	answers := make([]int, 0, len(parts))
	for _, part := range parts {
		answer, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q: answers are option indexes", part)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}
