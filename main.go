package main

import "github.com/dyike/CortexBrief/internal/cli"

func main() {
	cli.Run()
}
