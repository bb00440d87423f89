// Command generate-service-key mints a service key and prints the
// Argon2id hash to put in SERVICE_KEY_HASH or ADMIN_KEY_HASH. The
// plaintext key is shown once; only the hash is ever stored.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/TimFooLabs/drtimfoo-api/internal/auth"
)

type output struct {
	Key  string `json:"key"`
	Hash string `json:"hash"`
}

func main() {
	var (
		env    = flag.String("env", auth.EnvLive, "Key environment: live or test")
		format = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	generated, err := auth.GenerateServiceKey(*env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate service key:", err)
		os.Exit(1)
	}

	out := output{
		Key:  generated.Plaintext,
		Hash: generated.Hash,
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
	default:
		fmt.Println("Service key (save it now, it is not stored anywhere):")
		fmt.Println("  " + out.Key)
		fmt.Println()
		fmt.Println("Hash for SERVICE_KEY_HASH / ADMIN_KEY_HASH:")
		fmt.Println("  " + out.Hash)
	}
}
