package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route <question>",
	Short: "Show the routing decision for a question without answering it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	raw, err := postJSON("/v1/router/intent", query)
	if err != nil {
		return err
	}
	if jsonOut {
		fmt.Println(string(raw))
		return nil
	}

	var decision struct {
		Policy    string `json:"policy"`
		Rationale string `json:"rationale"`
	}
	if err := json.Unmarshal(raw, &decision); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("policy:    %s\n", colorPolicy(decision.Policy))
	fmt.Printf("rationale: %s\n", decision.Rationale)
	return nil
}
