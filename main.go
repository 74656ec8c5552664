package main

import (
	"Articulate/cmd"
)

func main() {
	cmd.Execute()
}
