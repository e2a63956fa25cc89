// ABOUTME: Subcommands that talk to a running console over HTTP
// ABOUTME: health probes /health, texts prints the public text listing as a table

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/2389/typing-console/internal/config"
)

// consoleURL turns a listen address into a URL a local client can dial.
func consoleURL(cfg *config.Config) string {
	host, port, err := net.SplitHostPort(cfg.Server.HTTPAddr)
	if err != nil {
		return "http://" + cfg.Server.HTTPAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig(getConfigPath())
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, consoleURL(cfg)+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// publicText is one row of the public listing.
type publicText struct {
	ID        string `json:"id"`
	Language  string `json:"language"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type publicListing struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    []publicText    `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

func runTexts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("texts", flag.ContinueOnError)
	base := fs.String("url", "", "Console base URL (defaults to the configured http address)")
	language := fs.String("language", "", "Filter by language (UZBEK, RUSSIAN, ENGLISH, KRILL)")
	page := fs.Int("page", 1, "Page number")
	limit := fs.Int("limit", 20, "Texts per page (the console caps this at 100)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *base == "" {
		cfg, _, err := loadConfig(getConfigPath())
		if err != nil {
			return err
		}
		*base = consoleURL(cfg)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	listing, err := fetchPublicTexts(ctx, client, *base, *language, *page, *limit)
	if err != nil {
		return err
	}

	printTexts(os.Stdout, listing.Data)
	return nil
}

func fetchPublicTexts(ctx context.Context, client *http.Client, base, language string, page, limit int) (*publicListing, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if language != "" {
		params.Set("language", language)
	}

	target := strings.TrimRight(base, "/") + "/api/public/texts?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching texts: %w", err)
	}
	defer resp.Body.Close()

	var listing publicListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := listing.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("console returned %d: %s", resp.StatusCode, msg)
	}
	return &listing, nil
}

func printTexts(out io.Writer, texts []publicText) {
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(out)
	cyan.Fprintln(out, "  Texts")
	cyan.Fprintln(out, "  -----")

	if len(texts) == 0 {
		fmt.Fprintln(out, "  (no texts)")
		fmt.Fprintln(out)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tLANGUAGE\tCREATED\tCONTENT")
	fmt.Fprintln(w, "  --\t--------\t-------\t-------")
	for _, t := range texts {
		created := t.CreatedAt
		if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
			created = ts.Format("Jan 02 15:04")
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", truncate(t.ID, 24), t.Language, created, truncate(oneLine(t.Content), 60))
	}
	w.Flush()
	fmt.Fprintln(out)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
