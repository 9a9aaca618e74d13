package main

import "github.com/decide-fyi/refund-notary/cmd/refund-notary/cmd"

func main() {
	cmd.Execute()
}
