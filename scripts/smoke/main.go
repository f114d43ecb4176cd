// Command smoke runs an end-to-end probe against a live scheduling engine.
// It submits a small scheduling job and polls it to a terminal state, which
// makes it suitable as a deploy acceptance check.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type jobStatus struct {
	JobID      string  `json:"job_id"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Message    string  `json:"message"`
	Error      string  `json:"error"`
	Generation *string `json:"schedule_generation_id"`
	Sessions   *int    `json:"total_sessions"`
}

func main() {
	var (
		base      string
		prefix    string
		token     string
		term      string
		algorithm string
		timeout   time.Duration
		wait      time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "Engine base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.StringVar(&token, "token", "", "Bearer token with admin role")
	flag.StringVar(&term, "term", "smoke", "Academic term label for the probe job")
	flag.StringVar(&algorithm, "algorithm", "csp", "Algorithm to exercise (csp or genetic)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.DurationVar(&wait, "wait", 2*time.Minute, "How long to wait for the job to finish")
	flag.Parse()

	if token == "" {
		log.Fatal("a bearer token is required (-token)")
	}

	client := &http.Client{Timeout: timeout}
	apiBase := strings.TrimRight(base, "/") + prefix

	if err := checkHealth(client, base); err != nil {
		log.Fatalf("engine unreachable: %v", err)
	}

	jobID, err := submitJob(client, apiBase, token, term, algorithm)
	if err != nil {
		log.Fatalf("failed to submit probe job: %v", err)
	}
	fmt.Printf("submitted job %s\n", jobID)

	final, err := pollJob(client, apiBase, token, jobID, wait)
	if err != nil {
		log.Fatalf("probe did not finish: %v", err)
	}

	printReport(final)
	switch final.Status {
	case "completed", "partially_completed":
		os.Exit(0)
	default:
		os.Exit(1)
	}
}

func checkHealth(client *http.Client, base string) error {
	resp, err := client.Get(strings.TrimRight(base, "/") + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint answered %d", resp.StatusCode)
	}
	return nil
}

func submitJob(client *http.Client, apiBase, token, term, algorithm string) (string, error) {
	start := time.Now()
	payload := map[string]interface{}{
		"name":           fmt.Sprintf("smoke %s", start.Format("2006-01-02 15:04:05")),
		"description":    "end-to-end probe, safe to delete",
		"algorithm_type": algorithm,
		"academic_term":  term,
		"start_date":     start.Format("2006-01-02"),
		"end_date":       start.AddDate(0, 3, 0).Format("2006-01-02"),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, apiBase+"/scheduler/jobs", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var job jobStatus
	if err := doJSON(client, req, &job); err != nil {
		return "", err
	}
	if job.JobID == "" {
		return "", fmt.Errorf("engine accepted the job but returned no job_id")
	}
	return job.JobID, nil
}

func pollJob(client *http.Client, apiBase, token, jobID string, wait time.Duration) (*jobStatus, error) {
	deadline := time.Now().Add(wait)
	var lastMessage string

	for time.Now().Before(deadline) {
		req, err := http.NewRequest(http.MethodGet, apiBase+"/scheduler/jobs/"+jobID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		var job jobStatus
		if err := doJSON(client, req, &job); err != nil {
			return nil, err
		}
		if job.Message != lastMessage {
			fmt.Printf("  %3.0f%% %-9s %s\n", job.Progress, job.Status, job.Message)
			lastMessage = job.Message
		}
		switch job.Status {
		case "completed", "partially_completed", "failed", "cancelled":
			return &job, nil
		}
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("job %s still not terminal after %s", jobID, wait)
}

func doJSON(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if env.Error != nil {
		return fmt.Errorf("%s (%s, %d)", env.Error.Message, env.Error.Code, env.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("engine answered %d", resp.StatusCode)
	}
	return json.Unmarshal(env.Data, out)
}

func printReport(job *jobStatus) {
	fmt.Println("Smoke Probe Report")
	fmt.Println("==================")
	fmt.Printf("Job:      %s\n", job.JobID)
	fmt.Printf("Status:   %s\n", job.Status)
	fmt.Printf("Message:  %s\n", job.Message)
	if job.Error != "" {
		fmt.Printf("Error:    %s\n", job.Error)
	}
	if job.Generation != nil {
		fmt.Printf("Schedule: %s\n", *job.Generation)
	}
	if job.Sessions != nil {
		fmt.Printf("Sessions: %d\n", *job.Sessions)
	}
}
