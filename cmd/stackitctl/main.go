package main

import "stackit.dev/forum/cmd/stackitctl/commands"

func main() {
	commands.Execute()
}
