package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kobo-ledger/kobo/internal/domain"
)

// ─── Daemon Client Commands ─────────────────────────────────────────────────
// capture, flush, status, and queue talk to a running `kobo serve` over its
// HTTP API. They do not touch the store directly: one process owns the queue.

var daemonAddr string

func init() {
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr", "127.0.0.1:7180",
		"Address of the running kobo daemon")

	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueClearCmd)

	captureCmd.Flags().StringP("description", "d", "", "Transaction description")
	captureCmd.Flags().StringP("amount", "a", "", "Amount (decimal, magnitude only)")
	captureCmd.Flags().StringP("kind", "k", "expense", "Kind: expense or income")
	captureCmd.Flags().StringP("category", "c", "", "Category (classified from description when omitted)")
	captureCmd.MarkFlagRequired("description")
	captureCmd.MarkFlagRequired("amount")
}

func apiURL(path string) string {
	return "http://" + daemonAddr + path
}

var client = &http.Client{Timeout: 30 * time.Second}

// call performs a request and decodes the JSON response into out.
func call(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, apiURL(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running at %s? %w", daemonAddr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ─── capture ────────────────────────────────────────────────────────────────

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record a transaction",
	Long:  `Record a transaction. Online it is committed remotely at once; offline it is queued durably and replayed later.`,
	RunE:  runCapture,
}

func runCapture(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	amount, _ := cmd.Flags().GetString("amount")
	kind, _ := cmd.Flags().GetString("kind")
	category, _ := cmd.Flags().GetString("category")

	var out struct {
		Status  string                   `json:"status"`
		Durable *bool                    `json:"durable"`
		Warning string                   `json:"warning"`
		Record  domain.QueuedTransaction `json:"record"`
	}
	err := call(http.MethodPost, "/api/transactions", map[string]string{
		"description": description,
		"amount":      amount,
		"kind":        kind,
		"category":    category,
	}, &out)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s  %s %s (%s) — %s\n",
		out.Record.ID, out.Record.Kind, out.Record.Amount, out.Record.Category, out.Status)
	if out.Durable != nil && !*out.Durable {
		fmt.Fprintf(os.Stderr, "warning: record is queued in memory only: %s\n", out.Warning)
	}
	return nil
}

// ─── flush ──────────────────────────────────────────────────────────────────

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Submit all pending records now",
	RunE: func(cmd *cobra.Command, args []string) error {
		var report domain.FlushReport
		if err := call(http.MethodPost, "/api/queue/flush", nil, &report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "synced %d, failed %d\n", report.Succeeded, len(report.Failed))
		for _, f := range report.Failed {
			fmt.Fprintf(os.Stdout, "  %s %q: %s\n", f.Record.ID, f.Record.Description, f.Reason)
		}
		return nil
	},
}

// ─── status ─────────────────────────────────────────────────────────────────

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and queue status",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out struct {
			Version string `json:"version"`
			Online  bool   `json:"online"`
			Pending int    `json:"pending"`
			Synced  int64  `json:"synced"`
			Failed  int64  `json:"failed"`
		}
		if err := call(http.MethodGet, "/api/status", nil, &out); err != nil {
			return err
		}
		state := "offline"
		if out.Online {
			state = "online"
		}
		fmt.Fprintf(os.Stdout, "kobo %s — %s\npending: %d\nsynced:  %d\nfailed:  %d\n",
			out.Version, state, out.Pending, out.Synced, out.Failed)
		return nil
	},
}

// ─── queue ──────────────────────────────────────────────────────────────────

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect or clear the offline queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending records in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out struct {
			Records []domain.QueuedTransaction `json:"records"`
		}
		if err := call(http.MethodGet, "/api/queue", nil, &out); err != nil {
			return err
		}
		if len(out.Records) == 0 {
			fmt.Fprintln(os.Stdout, "queue is empty")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tAMOUNT\tCATEGORY\tCAPTURED\tATTEMPTS\tDESCRIPTION")
		for _, rec := range out.Records {
			captured := time.UnixMilli(rec.CapturedAt).Format(time.DateTime)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				rec.ID, rec.Kind, rec.Amount, rec.Category, captured, rec.Attempts, rec.Description)
		}
		return w.Flush()
	},
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all pending records (explicit, irreversible)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := call(http.MethodDelete, "/api/queue", nil, nil); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "queue cleared")
		return nil
	},
}
