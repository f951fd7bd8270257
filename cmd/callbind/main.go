package main

import "martianoff/callbind/cmd/callbind/commands"

func main() {
	commands.Execute()
}
