package main

import (
	"context"
	"os"

	"github.com/kbukum/pmnps/cli"
	"github.com/kbukum/pmnps/output"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], output.Stdio()))
}
