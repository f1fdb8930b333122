package main

import (
	"github.com/mchmarny/trackreward/pkg/cli"
)

func main() {
	cli.Execute()
}
