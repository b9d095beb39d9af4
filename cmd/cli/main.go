package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jorngka-cli",
		Short: "Jorngka CLI tool",
		Long:  `A command line interface for interacting with the Jorngka loan API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Jorngka API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(creditCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func creditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Credit account operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balance",
		Short: "Show the credit account balance",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/credit/")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "transactions",
		Short: "List ledger transactions",
		Run: func(cmd *cobra.Command, args []string) {
			listTransactions()
		},
	})

	cmd.AddCommand(adjustCmd("deposit", "Deposit funds into the credit pool"))
	cmd.AddCommand(adjustCmd("withdraw", "Withdraw funds from the credit pool"))

	return cmd
}

func adjustCmd(name, short string) *cobra.Command {
	var userID, description string

	cmd := &cobra.Command{
		Use:   name + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/credit/"+name, map[string]any{
				"user_id":     userID,
				"amount":      args[0],
				"description": description,
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "admin", "Acting admin user id")
	cmd.Flags().StringVar(&description, "description", "", "Transaction description")

	return cmd
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run installment sweeps",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "late",
		Short: "Mark overdue installments late",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/sweeps/late", nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upcoming",
		Short: "Queue reminders for installments due soon",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/sweeps/upcoming", nil)
		},
	})

	return cmd
}

func listTransactions() {
	body := fetch(http.MethodGet, "/api/v1/credit/transactions", nil)

	var result struct {
		Transactions []struct {
			TransactionCode string `json:"transaction_code"`
			Kind            string `json:"kind"`
			Amount          string `json:"amount"`
			BalanceAfter    string `json:"balance_after"`
			Description     string `json:"description"`
		} `json:"transactions"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-24s %-18s %12s %12s  %s\n", "CODE", "KIND", "AMOUNT", "BALANCE", "DESCRIPTION")
	for _, tx := range result.Transactions {
		fmt.Printf("%-24s %-18s %12s %12s  %s\n",
			tx.TransactionCode, tx.Kind, tx.Amount, tx.BalanceAfter, truncate(tx.Description, 40))
	}
	fmt.Printf("Total: %d\n", result.Total)
}

func getJSON(path string) {
	body := fetch(http.MethodGet, path, nil)

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	printJSON(result)
}

func postJSON(path string, payload any) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = bytes.NewReader(data)
	}

	body := fetch(http.MethodPost, path, reqBody)

	if len(body) == 0 {
		fmt.Println("OK")
		return
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	printJSON(result)
}

func fetch(method, path string, reqBody io.Reader) []byte {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}
	return body
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
