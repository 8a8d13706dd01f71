package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	leaderboardLimit int
	importFile       string
	importType       string
	noSkipDuplicates bool
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(listCmd("teams", "List teams, or show one team page"))
	rootCmd.AddCommand(listCmd("players", "List players, or show one player page"))
	rootCmd.AddCommand(listCmd("matches", "List matches, or show one match"))

	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 20, "Number of players to show")
	rootCmd.AddCommand(leaderboardCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import")
	importCmd.Flags().StringVar(&importType, "type", "", "Data type: teams, players, matches or player_stats")
	importCmd.Flags().BoolVar(&noSkipDuplicates, "no-skip-duplicates", false, "Update rows whose key already exists instead of skipping them")
	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(importCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

func listCmd(resource, short string) *cobra.Command {
	return &cobra.Command{
		Use:   resource + " [id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/" + resource
			if len(args) == 1 {
				path += "/" + url.PathEscape(args[0])
			}
			return performRequest(http.MethodGet, path, nil)
		},
	}
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the goals and assists leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/leaderboard?limit="+strconv.Itoa(leaderboardLimit), nil)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Upload a CSV file to the import endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(importFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", importFile, err)
		}
		body, err := json.Marshal(map[string]any{
			"dataType":       importType,
			"data":           string(data),
			"dryRun":         dryRun,
			"skipDuplicates": !noSkipDuplicates,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Importing %s as %s (dry run: %t)\n", importFile, importType, dryRun)
		return performRequest(http.MethodPost, "/api/import", body)
	},
}

func performRequest(method, endpoint string, body []byte) error {
	u, err := url.Parse(host + endpoint)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	q := u.Query()
	if dryRun {
		q.Set("dry_run", "true")
	}
	if verbose {
		q.Set("verbose", "true")
	}
	u.RawQuery = q.Encode()
	fmt.Printf("Making request to %s\n", u)

	req, err := http.NewRequest(method, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
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

	if resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
