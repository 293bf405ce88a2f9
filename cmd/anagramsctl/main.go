package main

import "github.com/mcoot/anagrams-go/internal/cli"

func main() {
	cli.Execute()
}
