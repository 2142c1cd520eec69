package main

import (
	"context"
	"log"

	"planbench/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
