// elevatectl is a demonstration client for the plan-elevation service: it
// submits a floor-plan image and waits for the finished elevation, or
// downloads a previous result by task id.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elevatectl [flags] [options]",
		Short: "elevatectl talks to the plan elevation service.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "base URL of the plan elevation service")
	cmd.AddCommand(newSubmitCommand())
	cmd.AddCommand(newDownloadCommand())

	return cmd
}

func newSubmitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <plan-image>",
		Short: "Upload a floor plan and wait for the generated elevation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(args[0])
		},
	}
}

func newDownloadCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download <task-id>",
		Short: "Download the result image of a finished task.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return download(args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to the server-suggested name)")
	return cmd
}

func submit(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	fmt.Printf("Uploading %s to %s/api/generate...\n", path, serverURL)
	// The server blocks until the remote generation finishes, so allow for
	// the full poll window.
	client := &http.Client{Timeout: 6 * time.Minute}
	resp, err := client.Post(serverURL+"/api/generate", mw.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, raw)
	}

	var result struct {
		Status         string `json:"status"`
		TaskID         string `json:"task_id"`
		ResultImageURL string `json:"result_image_url"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	if result.Status != "success" {
		return fmt.Errorf("generation did not succeed: %s", raw)
	}
	fmt.Println("Success!")
	fmt.Println("Task ID:", result.TaskID)
	fmt.Println("Result Image URL:", result.ResultImageURL)
	return nil
}

func download(taskID, output string) error {
	endpoint := serverURL + "/api/download?task_id=" + url.QueryEscape(taskID)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, raw)
	}

	if output == "" {
		output = suggestedFilename(resp.Header.Get("Content-Disposition"), taskID)
	}
	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	fmt.Println("Saved", output)
	return nil
}

func suggestedFilename(disposition, taskID string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := filepath.Base(params["filename"]); name != "." && name != "/" && name != "" {
				return name
			}
		}
	}
	return "elevation_" + taskID + ".jpg"
}
