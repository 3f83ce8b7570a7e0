package main

import (
	"go-wallhaven-rotator/cmd/wallhaven-rotator/cmd"
)

func main() {
	cmd.Execute()
}
