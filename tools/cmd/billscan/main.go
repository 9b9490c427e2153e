// Debug tool: run the extraction pipeline on one bill image and print the
// structured result as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/VaishnaviPadulkar/solar-main/pkg/billscan"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: go run ./tools/cmd/billscan <image>")
		os.Exit(2)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	data, err := billscan.ExtractBillData(ctx, os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract failed: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(data, "", "  ")
	fmt.Println(string(out))
}
