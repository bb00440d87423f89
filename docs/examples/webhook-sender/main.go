// Command webhook-sender posts a signed Clerk-style user event to a
// local API instance. It is a development tool for exercising the
// webhook endpoint without a real Clerk dashboard.
//
// Usage:
//
//	export CLERK_WEBHOOK_SIGNING_SECRET="whsec_..."
//	go run ./docs/examples/webhook-sender -type user.created -id user_123 -email tim@example.com
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
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/TimFooLabs/drtimfoo-api/internal/webhook"
)

func main() {
	var (
		target    = flag.String("url", "http://localhost:8080/webhooks/clerk", "Webhook endpoint URL")
		eventType = flag.String("type", "user.created", "Event type to send")
		clerkID   = flag.String("id", "user_dev_1", "External user id")
		email     = flag.String("email", "dev@example.com", "Primary email address")
		firstName = flag.String("first-name", "Dev", "First name")
		lastName  = flag.String("last-name", "User", "Last name")
		skew      = flag.Duration("skew", 0, "Offset applied to the signed timestamp, e.g. -10m to test replay rejection")
	)
	flag.Parse()

	rawSecret := os.Getenv("CLERK_WEBHOOK_SIGNING_SECRET")
	if rawSecret == "" {
		log.Fatal("CLERK_WEBHOOK_SIGNING_SECRET environment variable is required")
	}

	secret, err := webhook.ParseSecret(rawSecret)
	if err != nil {
		log.Fatalf("parse secret: %v", err)
	}

	body, err := json.Marshal(map[string]any{
		"type": *eventType,
		"data": map[string]any{
			"id":         *clerkID,
			"first_name": *firstName,
			"last_name":  *lastName,
			"email_addresses": []map[string]string{
				{"email_address": *email},
			},
		},
	})
	if err != nil {
		log.Fatalf("marshal event: %v", err)
	}

	msgID := "msg_" + ulid.Make().String()
	timestamp := time.Now().Add(*skew).Unix()
	signature := webhook.Sign(secret, msgID, timestamp, body)

	req, err := http.NewRequest(http.MethodPost, *target, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", msgID)
	req.Header.Set("svix-timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("svix-signature", signature)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("send webhook: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("message id: %s\n", msgID)
	fmt.Printf("status:     %s\n", resp.Status)
	fmt.Printf("response:   %s", respBody)
}
