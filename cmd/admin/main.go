package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/securedoc/internal/admin"
)

func main() {
	if err := admin.NewRootCmd(admin.OpenComponents).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
