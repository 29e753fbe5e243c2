package main

import "github.com/farellandr/eventhub/cmd/eventhub/commands"

func main() {
	commands.Execute()
}
