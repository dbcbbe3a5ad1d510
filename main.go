package main

import (
	"github.com/dyike/FinSightGo/internal/cli"
)

func main() {
	cli.Run()
}
