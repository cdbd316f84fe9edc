package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/delimasa/ordergate/internal/api"
	"github.com/delimasa/ordergate/internal/engine"
	"github.com/delimasa/ordergate/internal/money"
)

const defaultAddr = "http://localhost:8080"

func main() {
	exitFn(run(os.Args, os.Stdout, os.Stderr))
}

var exitFn = os.Exit

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "analyze":
		return handleAnalyze(args[2:], stdout, stderr)
	case "clients":
		return handleClients(args[2:], stdout, stderr)
	case "products":
		return handleProducts(args[2:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

// itemFlags collects repeated -item values of the form
// product:quantity:unitPrice[:discount].
type itemFlags []engine.OrderItem

func (f *itemFlags) String() string {
	return fmt.Sprintf("%d items", len(*f))
}

func (f *itemFlags) Set(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return fmt.Errorf("item must be product:quantity:unitPrice[:discount]")
	}

	quantity, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", parts[1])
	}
	price, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return fmt.Errorf("invalid unit price %q", parts[2])
	}

	var discount float64
	if len(parts) == 4 {
		discount, err = strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return fmt.Errorf("invalid discount %q", parts[3])
		}
	}

	*f = append(*f, engine.OrderItem{
		Product:     parts[0],
		Quantity:    quantity,
		UnitPrice:   price,
		DiscountPct: discount,
	})
	return nil
}

func handleAnalyze(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOrDefault("ORDERGATE_ADDR", defaultAddr), "ordergate API address")
	clientID := fs.String("client", "", "client id")
	conditions := fs.String("conditions", "", "special conditions for the order")
	withAI := fs.Bool("ai", false, "request the AI-assisted analysis")
	jsonOut := fs.Bool("json", false, "print raw JSON response")
	var items itemFlags
	fs.Var(&items, "item", "order line as product:quantity:unitPrice[:discount]; repeatable")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	if *clientID == "" || len(items) == 0 {
		fmt.Fprintln(stderr, "analyze requires -client and at least one -item")
		fs.Usage()
		return 2
	}

	path := "/api/orders/analyze"
	if *withAI {
		path = "/api/orders/analyze-with-ai"
	}

	payload := api.AnalyzeOrderRequest{
		ClientID:   *clientID,
		Items:      items,
		Conditions: *conditions,
	}
	respBody, status, err := httpPost(http.DefaultClient, *addr+path, payload)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if status != http.StatusOK {
		fmt.Fprintf(stderr, "analyze failed: %s\n", strings.TrimSpace(string(respBody)))
		return 1
	}

	if *jsonOut {
		_, _ = stdout.Write(respBody)
		return 0
	}

	var record api.AnalysisRecord
	if err := json.Unmarshal(respBody, &record); err != nil {
		fmt.Fprintln(stderr, "invalid response:", err)
		return 1
	}

	printRecord(stdout, record)
	return 0
}

func printRecord(w io.Writer, record api.AnalysisRecord) {
	rules := record.RuleDecision
	fmt.Fprintf(w, "analysis_id=%s client=%s\n", record.AnalysisID, record.ClientPolicy.ID)
	fmt.Fprintf(w, "rule_decision=%s risk=%s total=%s margin=%.1f%% discount=%.1f%%\n",
		rules.Decision, rules.RiskLevel, money.Format(rules.OrderTotal), rules.AverageMargin, rules.AverageDiscount)
	for _, risk := range rules.Risks {
		fmt.Fprintf(w, "risk: %s\n", risk)
	}

	if record.FinalDecision != nil {
		fmt.Fprintf(w, "final_decision=%s confidence=%d\n", record.FinalDecision.Decision, record.FinalDecision.Confidence)
		for _, item := range record.FinalDecision.ActionItems {
			fmt.Fprintf(w, "action: %s\n", item)
		}
	}
}

func handleClients(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("clients", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOrDefault("ORDERGATE_ADDR", defaultAddr), "ordergate API address")
	jsonOut := fs.Bool("json", false, "print raw JSON response")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	respBody, status, err := httpGet(http.DefaultClient, *addr+"/api/clients")
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if status != http.StatusOK {
		fmt.Fprintf(stderr, "clients failed: %s\n", strings.TrimSpace(string(respBody)))
		return 1
	}

	if *jsonOut {
		_, _ = stdout.Write(respBody)
		return 0
	}

	var payload struct {
		Data []struct {
			ID          string  `json:"id"`
			Name        string  `json:"name"`
			Category    string  `json:"category"`
			CreditLimit float64 `json:"creditLimit"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		fmt.Fprintln(stderr, "invalid response:", err)
		return 1
	}

	for _, client := range payload.Data {
		fmt.Fprintf(stdout, "%s\t%s\t%s\tcredit=%s\n", client.ID, client.Name, client.Category, money.Format(client.CreditLimit))
	}
	return 0
}

func handleProducts(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOrDefault("ORDERGATE_ADDR", defaultAddr), "ordergate API address")
	query := fs.String("q", "", "search products by name")
	jsonOut := fs.Bool("json", false, "print raw JSON response")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	path := "/api/products"
	if *query != "" {
		path = "/api/products/search?q=" + *query
	}

	respBody, status, err := httpGet(http.DefaultClient, *addr+path)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if status != http.StatusOK {
		fmt.Fprintf(stderr, "products failed: %s\n", strings.TrimSpace(string(respBody)))
		return 1
	}

	if *jsonOut {
		_, _ = stdout.Write(respBody)
		return 0
	}

	var payload struct {
		Data []struct {
			ID        string  `json:"id"`
			Name      string  `json:"name"`
			BasePrice float64 `json:"basePrice"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		fmt.Fprintln(stderr, "invalid response:", err)
		return 1
	}

	for _, product := range payload.Data {
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", product.ID, product.Name, money.Format(product.BasePrice))
	}
	return 0
}

func httpPost(client *http.Client, url string, payload any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

func httpGet(client *http.Client, url string) ([]byte, int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func envOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Ordergate CLI

Usage:
  ordergate analyze -client ID -item product:qty:price[:discount] [-item ...] [-ai] [-conditions TEXT] [-addr URL] [-json]
  ordergate clients [-addr URL] [-json]
  ordergate products [-q QUERY] [-addr URL] [-json]
`)
}
