package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/recipeapi/internal/admin"
)

func main() {
	if err := admin.Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
