package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the orchestrator a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

type askResponse struct {
	Answer  string `json:"answer"`
	Routing struct {
		Policy    string `json:"policy"`
		Rationale string `json:"rationale"`
	} `json:"routing"`
	Latency struct {
		Retrieve int64 `json:"retrieve"`
		Rerank   int64 `json:"rerank"`
		Generate int64 `json:"generate"`
		Total    int64 `json:"total"`
	} `json:"latency_ms"`
	Confidence float64           `json:"confidence"`
	Sources    []json.RawMessage `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	raw, err := postJSON("/v1/agent/answer", query)
	if err != nil {
		return err
	}
	if jsonOut {
		fmt.Println(string(raw))
		return nil
	}

	var resp askResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Println("Answer")
	fmt.Println(resp.Answer)
	fmt.Println()
	bold.Println("Routing")
	fmt.Printf("  policy:    %s\n", colorPolicy(resp.Routing.Policy))
	fmt.Printf("  rationale: %s\n", resp.Routing.Rationale)
	fmt.Println()
	bold.Println("Sources")
	if len(resp.Sources) == 0 {
		dim.Println("  (none)")
	}
	for _, src := range resp.Sources {
		fmt.Printf("  %s\n", string(src))
	}
	fmt.Println()
	dim.Printf("confidence %.2f | retrieve %dms | rerank %dms | generate %dms | total %dms\n",
		resp.Confidence,
		resp.Latency.Retrieve, resp.Latency.Rerank, resp.Latency.Generate, resp.Latency.Total)
	return nil
}

func colorPolicy(policy string) string {
	switch policy {
	case "local":
		return color.GreenString(policy)
	case "web":
		return color.CyanString(policy)
	case "hybrid":
		return color.YellowString(policy)
	default:
		return policy
	}
}
