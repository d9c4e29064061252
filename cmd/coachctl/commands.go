package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coursehub/backend/internal/feedback"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/service"
	"coursehub/backend/internal/stream"
)

const previewWidth = 60

var httpClient = &http.Client{Timeout: 2 * time.Minute}

func endpoint(path string) string {
	return strings.TrimSuffix(viper.GetString("server"), "/") + path
}

// checkStatus turns a non-2xx response into a *stream.RequestFailedError
// carrying the server's error message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	_, err := stream.Open(resp)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func historyCmd() *cobra.Command {
	var studentID, taskKey string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored draft versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"student_id": {studentID}, "task_key": {taskKey}}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint("/api/v1/drafts?"+q.Encode()), nil)
			if err != nil {
				return err
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if err := checkStatus(resp); err != nil {
				return err
			}

			var drafts []*service.DraftView
			if err := json.NewDecoder(resp.Body).Decode(&drafts); err != nil {
				return fmt.Errorf("could not read drafts: %w", err)
			}
			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), drafts)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Version", "Updated", "Words", "Submitted", "Feedback"})
			for _, d := range drafts {
				tw.AppendRow(table.Row{
					d.Version,
					d.UpdatedAt.Local().Format("2006-01-02 15:04"),
					len(strings.Fields(d.Content)),
					d.IsSubmitted,
					preview(d.Feedback()),
				})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&studentID, "student", "", "student id")
	cmd.Flags().StringVar(&taskKey, "task", "", "task key")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func feedbackCmd() *cobra.Command {
	var studentID, file string
	var task feedback.Task
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Request feedback on a text file and print it as it streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(string(content)) == "" {
				return fmt.Errorf("%s is empty", file)
			}

			body, err := json.Marshal(service.ChatRequest{
				StudentID: studentID,
				Messages:  feedback.BuildPrompt(task, string(content)),
				Meta:      &service.ChatMeta{Type: "feedback", WeekTitle: task.Title},
			})
			if err != nil {
				return err
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, endpoint("/api/v1/chat"), bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "text/event-stream")

			resp, err := httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			dec, err := stream.Open(resp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := stream.Collect(cmd.Context(), dec, func(delta string) { fmt.Fprint(out, delta) }); err != nil {
				return err
			}
			fmt.Fprintln(out)
			if used := resp.Header.Get("X-Usage-Used"); used != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "usage: %s/%s requests today\n", used, resp.Header.Get("X-Usage-Limit"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&studentID, "student", "", "student id")
	cmd.Flags().StringVar(&file, "file", "", "text file to send")
	cmd.Flags().StringVar(&task.Title, "task-title", "", "task title")
	cmd.Flags().StringVar(&task.Instructions, "task-instructions", "", "task instructions")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage <student>",
		Short: "Show today's relay usage for a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint("/api/v1/usage/"+url.PathEscape(args[0])), nil)
			if err != nil {
				return err
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if err := checkStatus(resp); err != nil {
				return err
			}

			var usage model.Usage
			if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
				return fmt.Errorf("could not read usage: %w", err)
			}
			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), usage)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s used %d of %d requests on %s\n", usage.StudentID, usage.RequestCount, usage.Limit, usage.UsageDate)
			return nil
		},
	}
	return cmd
}

// preview shortens feedback to one line for the history table.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= previewWidth {
		return s
	}
	return string(r[:previewWidth-1]) + "…"
}
