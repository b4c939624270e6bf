package main

import (
	"bser/cmd/bser/cmd"
)

func main() {
	cmd.Execute()
}
