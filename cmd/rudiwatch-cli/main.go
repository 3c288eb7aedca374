package main

import "rudiwatch/cmd/rudiwatch-cli/cmd"

func main() {
	cmd.Execute()
}
