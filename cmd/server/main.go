package main

import "github.com/chatterbox-im/chatterbox/cmd"

func main() {
	cmd.Execute()
}
