package main

import (
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/cli"
)

func main() {
	cli.Execute()
}
