package main

import "github.com/deepnoodle-ai/weft/cmd/weft/cli"

func main() {
	cli.Execute()
}
