package main

import "github.com/mcoot/blazeboard/internal/cli"

func main() {
	cli.Execute()
}
