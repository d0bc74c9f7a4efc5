package main

import "github.com/dropDatabas3/lockerbridge/cmd/lockerbridge/cmd"

func main() {
	cmd.Execute()
}
