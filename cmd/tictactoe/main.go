package main

import "github.com/jaminalder/tictactoe-minimax/internal/cli"

func main() {
	cli.Execute()
}
