package main

import "github.com/tair/voltmarket/cmd/voltmarket/commands"

func main() {
	commands.Execute()
}
