package main

import "github.com/slotwatchhq/slotwatch/internal/cli"

func main() {
	cli.Execute()
}
