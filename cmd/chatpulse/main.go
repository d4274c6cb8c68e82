package main

import "github.com/vietddude/chatpulse/internal/cli"

func main() {
	cli.Execute()
}
