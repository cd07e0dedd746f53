package main

import "github.com/gridmarket/ms-go-settlement/cmd"

func main() {
	cmd.Execute()
}
