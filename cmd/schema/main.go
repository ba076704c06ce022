// Command schema applies the gateway's embedded schema.sql to a DuckDB
// file, creating it if necessary. Useful for provisioning a mirror
// database outside of vaultd's own startup path.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/clearvault/vault/pkg/gateway"
)

func main() {
	path := "vault.duckdb"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	store, err := gateway.OpenStore(path)
	if err != nil {
		log.Fatal("failed to apply schema: ", err)
	}
	defer store.Close()

	fmt.Println("schema applied to", path)
}
