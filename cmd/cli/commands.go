package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	sortBy      string
	query       string
	courtCount  int
	title       string
	enqueueEnd  string
	requeueMode string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(trainingsCmd)
	rootCmd.AddCommand(sessionCmd)

	playersCmd.Flags().StringVar(&sortBy, "sort", "rating", "Sort order: rating or name")
	playersCmd.Flags().StringVarP(&query, "query", "q", "", "Search players by name")

	trainingsCmd.AddCommand(createTrainingCmd)
	createTrainingCmd.Flags().StringVar(&title, "title", "Training", "Title of the training")
	createTrainingCmd.Flags().IntVar(&courtCount, "courts", 2, "Number of courts")

	sessionCmd.AddCommand(viewCmd, enqueueCmd, dequeueCmd, assignCmd, unassignCmd,
		startCmd, cancelCmd, finishCmd, addCourtCmd, removeCourtCmd, renameCmd, modeCmd, persistCmd)
	enqueueCmd.Flags().StringVar(&enqueueEnd, "end", "end", "Queue end: start or end")
	unassignCmd.Flags().StringVar(&requeueMode, "requeue", "start", "Where the player goes: start, end or none")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List or search the club's players",
	RunE: func(cmd *cobra.Command, args []string) error {
		if query != "" {
			return performGetRequest("/players?q=" + url.QueryEscape(query))
		}
		return performGetRequest("/players?sort=" + url.QueryEscape(sortBy))
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the win/loss leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var trainingsCmd = &cobra.Command{
	Use:   "trainings",
	Short: "List trainings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/trainings")
	},
}

var createTrainingCmd = &cobra.Command{
	Use:   "create [player-id...]",
	Short: "Create a training with the given players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/trainings", map[string]any{
			"title":       title,
			"court_count": courtCount,
			"player_ids":  args,
		})
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Drive a training session's queue and courts",
}

var viewCmd = &cobra.Command{
	Use:   "view <session>",
	Short: "Show the courts and queue of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(sessionPath(args[0]))
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <session> <player>",
	Short: "Add a player to the queue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, sessionPath(args[0], "queue"), map[string]string{
			"playerId": args[1],
			"end":      enqueueEnd,
		})
	},
}

var dequeueCmd = &cobra.Command{
	Use:   "dequeue <session> <player>",
	Short: "Remove a player from the queue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, sessionPath(args[0], "queue", args[1]), nil)
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <session> <court> <top|bottom> <player>",
	Short: "Put a queued player on a court",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkCourt(args[1]); err != nil {
			return err
		}
		return performRequest(http.MethodPost, sessionPath(args[0], "courts", args[1], "slots"), map[string]string{
			"playerId": args[3],
			"half":     args[2],
		})
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign <session> <court> <top|bottom> <slot>",
	Short: "Take a player off a court",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkCourt(args[1]); err != nil {
			return err
		}
		return performRequest(http.MethodDelete, sessionPath(args[0], "courts", args[1], "slots", args[2], args[3])+"?requeue="+url.QueryEscape(requeueMode), nil)
	},
}

var startCmd = &cobra.Command{
	Use:   "start <session> <court>",
	Short: "Start the game on a full court",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return courtAction(args, "start", nil)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <session> <court>",
	Short: "Stop the game on a court without a result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return courtAction(args, "cancel", nil)
	},
}

var finishCmd = &cobra.Command{
	Use:   "finish <session> <court> <top|bottom>",
	Short: "Finish the game on a court with the winning half",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return courtAction(args[:2], "finish", map[string]string{"winner": args[2]})
	},
}

var addCourtCmd = &cobra.Command{
	Use:   "add-court <session>",
	Short: "Add a court to the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, sessionPath(args[0], "courts"), nil)
	},
}

var removeCourtCmd = &cobra.Command{
	Use:   "remove-court <session>",
	Short: "Remove the last court if it is empty",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, sessionPath(args[0], "courts", "last"), nil)
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <session> <court> <name>",
	Short: "Rename a court",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkCourt(args[1]); err != nil {
			return err
		}
		return performRequest(http.MethodPut, sessionPath(args[0], "courts", args[1], "name"), map[string]string{
			"name": strings.Join(args[2:], " "),
		})
	},
}

var modeCmd = &cobra.Command{
	Use:   "mode <session> <single|max-two-wins|winner-stays>",
	Short: "Set the rotation mode",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPut, sessionPath(args[0], "mode"), map[string]string{"mode": args[1]})
	},
}

var persistCmd = &cobra.Command{
	Use:   "persist <session>",
	Short: "Save the session now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, sessionPath(args[0], "persist"), nil)
	},
}

func sessionPath(id string, parts ...string) string {
	segments := append([]string{"sessions", url.PathEscape(id)}, parts...)
	return "/" + strings.Join(segments, "/")
}

func checkCourt(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("court must be a number, got %q", s)
	}
	return nil
}

func courtAction(args []string, action string, body any) error {
	if err := checkCourt(args[1]); err != nil {
		return err
	}
	return performRequest(http.MethodPost, sessionPath(args[0], "courts", args[1], action), body)
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint, nil)
}

func performRequest(method, endpoint string, body any) error {
	target := host + endpoint
	if dryRun && method != http.MethodGet {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "dry_run=true"
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
