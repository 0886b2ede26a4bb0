// Command hashkey prints the bcrypt hash of an access key, for use as
// ACCESS_ADMIN_KEY_HASH or ACCESS_DEVELOPER_KEY_HASH.
//
//	go run ./cmd/hashkey 's3cret'
package main

import (
	"fmt"
	"os"

	"github.com/ICMVRD/sb1-hdboxt/internal/middleware"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: hashkey <key>")
		os.Exit(2)
	}

	hash, err := middleware.HashAccessKey(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashkey: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
