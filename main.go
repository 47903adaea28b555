package main

import "github.com/rodrigofernandesribeiro/an-encrypted-chatroom/cmd"

func main() {
	cmd.Execute()
}
